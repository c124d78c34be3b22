package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/altsang/kpop-concert-tracker/app/db"
	appLogger "github.com/altsang/kpop-concert-tracker/app/logger"
	"github.com/altsang/kpop-concert-tracker/app/observability/metrics"
	"github.com/altsang/kpop-concert-tracker/app/tracer"
	"github.com/altsang/kpop-concert-tracker/config"
	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/api/announcement"
	"github.com/altsang/kpop-concert-tracker/internal/api/artist"
	"github.com/altsang/kpop-concert-tracker/internal/api/concert"
	"github.com/altsang/kpop-concert-tracker/internal/api/dashboard"
	"github.com/altsang/kpop-concert-tracker/internal/api/tour"
	"github.com/altsang/kpop-concert-tracker/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	tracer.InitTracingAndMetrics()
	metrics.InitAppMetrics()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Run migrations *before* initializing the main pool
	err = database.RunMigrations(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency Injection ---
	artistRepo := artist.NewPostgresRepository(pool, logger)
	artistService := artist.NewServiceImpl(artistRepo, logger)
	artistHandler := artist.NewHandler(artistService, logger)

	tourRepo := tour.NewPostgresRepository(pool, logger)
	tourService := tour.NewServiceImpl(tourRepo, logger)
	tourHandler := tour.NewHandler(tourService, logger)

	concertRepo := concert.NewPostgresRepository(pool, logger)
	concertService := concert.NewServiceImpl(concertRepo, logger)
	concertHandler := concert.NewHandler(concertService, logger)

	dashboardRepo := dashboard.NewPostgresRepository(pool, logger)
	dashboardService := dashboard.NewServiceImpl(dashboardRepo, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)

	limiter := announcement.NewRateLimiter(cfg.Twitter.SearchLimit, cfg.Twitter.WindowSeconds)
	twitterClient := announcement.NewTwitterClient(limiter, logger)
	announcementRepo := announcement.NewPostgresRepository(pool, logger)
	announcementService := announcement.NewServiceImpl(
		announcementRepo, twitterClient, limiter, metrics.Get(), cfg.Twitter.MaxResults, logger)
	announcementHandler := announcement.NewHandler(announcementService, logger)

	// --- Router Setup ---
	routerConfig := &router.Config{
		ArtistHandler:       artistHandler,
		TourHandler:         tourHandler,
		ConcertHandler:      concertHandler,
		DashboardHandler:    dashboardHandler,
		AnnouncementHandler: announcementHandler,
	}
	mainRouter := router.SetupRouter(routerConfig)

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(60 * time.Second))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Mount("/", mainRouter)

	// --- Background Refresh ---
	if twitterClient.IsConfigured() && cfg.Twitter.RefreshIntervalMinutes > 0 {
		go refreshLoop(ctx, announcementService, time.Duration(cfg.Twitter.RefreshIntervalMinutes)*time.Minute, logger)
	} else {
		logger.Info("Background announcement refresh disabled",
			slog.Bool("twitter_configured", twitterClient.IsConfigured()))
	}

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// refreshLoop polls the social feed for every favorite artist until ctx is
// cancelled.
func refreshLoop(ctx context.Context, svc announcement.Service, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := svc.Refresh(ctx, api.RefreshRequest{})
			if err != nil {
				logger.Error("Scheduled announcement refresh failed", slog.Any("error", err))
				continue
			}
			logger.Info("Scheduled announcement refresh complete",
				slog.Int("artists_processed", summary.ArtistsProcessed),
				slog.Int("new_announcements", summary.TotalNewAnnouncements))
		}
	}
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
