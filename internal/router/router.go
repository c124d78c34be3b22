package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/altsang/kpop-concert-tracker/internal/api/announcement"
	"github.com/altsang/kpop-concert-tracker/internal/api/artist"
	"github.com/altsang/kpop-concert-tracker/internal/api/concert"
	"github.com/altsang/kpop-concert-tracker/internal/api/dashboard"
	"github.com/altsang/kpop-concert-tracker/internal/api/tour"
)

// Config contains the handlers needed for the router setup.
type Config struct {
	ArtistHandler       *artist.Handler
	TourHandler         *tour.Handler
	ConcertHandler      *concert.Handler
	DashboardHandler    *dashboard.Handler
	AnnouncementHandler *announcement.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/artists", func(r chi.Router) {
			r.Post("/", cfg.ArtistHandler.CreateArtist)
			r.Get("/", cfg.ArtistHandler.ListArtists)
			r.Get("/{artistID}", cfg.ArtistHandler.GetArtist)
			r.Put("/{artistID}", cfg.ArtistHandler.UpdateArtist)
			r.Delete("/{artistID}", cfg.ArtistHandler.DeleteArtist)
		})

		r.Route("/tours", func(r chi.Router) {
			r.Post("/", cfg.TourHandler.CreateTour)
			r.Get("/", cfg.TourHandler.ListTours)
			r.Get("/{tourID}", cfg.TourHandler.GetTour)
			r.Put("/{tourID}", cfg.TourHandler.UpdateTour)
			r.Delete("/{tourID}", cfg.TourHandler.DeleteTour)
			r.Post("/{tourID}/dates", cfg.TourHandler.AddTourDate)
			r.Put("/{tourID}/dates/{dateID}", cfg.TourHandler.UpdateTourDate)
			r.Delete("/{tourID}/dates/{dateID}", cfg.TourHandler.DeleteTourDate)
		})

		r.Get("/concerts", cfg.ConcertHandler.ListConcerts)
		r.Get("/dashboard/summary", cfg.DashboardHandler.GetSummary)

		r.Route("/twitter", func(r chi.Router) {
			r.Get("/status", cfg.AnnouncementHandler.GetStatus)
			r.Post("/refresh", cfg.AnnouncementHandler.Refresh)
			r.Get("/announcements", cfg.AnnouncementHandler.ListAnnouncements)
			r.Post("/parse-test", cfg.AnnouncementHandler.ParseTest)
			r.Post("/process/{announcementID}", cfg.AnnouncementHandler.ProcessAnnouncement)
		})
	})

	return r
}
