package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altsang/kpop-concert-tracker/internal/api"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository defines read access to the dashboard aggregates.
type Repository interface {
	GetSummaryCounts(ctx context.Context) (*api.DashboardSummary, error)
	GetNextConcert(ctx context.Context) (*api.ConcertDisplayItem, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgxpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgxpool,
	}
}

// GetSummaryCounts computes every aggregate except the next-concert item in
// one pass over favorite artists' show dates.
func (r *PostgresRepository) GetSummaryCounts(ctx context.Context) (*api.DashboardSummary, error) {
	var summary api.DashboardSummary

	err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM artists WHERE is_favorite = TRUE`).
		Scan(&summary.TotalArtistsTracked)
	if err != nil {
		return nil, fmt.Errorf("failed to count artists: %w", err)
	}

	err = r.pgpool.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE td.date >= CURRENT_DATE),
            COUNT(*) FILTER (WHERE td.date < CURRENT_DATE),
            COUNT(*) FILTER (WHERE td.date >= date_trunc('month', CURRENT_DATE)
                AND td.date < date_trunc('month', CURRENT_DATE) + INTERVAL '1 month'),
            COUNT(*) FILTER (WHERE td.date IS NULL),
            COUNT(*) FILTER (WHERE td.date >= CURRENT_DATE AND LOWER(td.city) IN ('seoul', '서울')),
            COUNT(*) FILTER (WHERE td.date >= CURRENT_DATE AND td.is_encore = TRUE)
        FROM tour_dates td
        JOIN tours t ON td.tour_id = t.id
        JOIN artists a ON t.artist_id = a.id
        WHERE a.is_favorite = TRUE
    `).Scan(
		&summary.TotalUpcomingConcerts,
		&summary.TotalPastConcerts,
		&summary.ConcertsThisMonth,
		&summary.ConcertsWithTBD,
		&summary.SeoulShowsUpcoming,
		&summary.EncoreShowsUpcoming,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard counts: %w", err)
	}
	return &summary, nil
}

func (r *PostgresRepository) GetNextConcert(ctx context.Context) (*api.ConcertDisplayItem, error) {
	var item api.ConcertDisplayItem
	err := r.pgpool.QueryRow(ctx, `
        SELECT
            td.id, a.id, a.name, a.korean_name, t.id, t.tour_name,
            td.city, td.venue, td.country, td.region, td.date, td.end_date,
            td.is_seoul_kickoff, td.is_encore, td.is_finale, t.has_tbd_dates,
            td.status, td.ticket_url, td.ticket_status
        FROM tour_dates td
        JOIN tours t ON td.tour_id = t.id
        JOIN artists a ON t.artist_id = a.id
        WHERE a.is_favorite = TRUE AND td.date >= CURRENT_DATE
        ORDER BY td.date ASC
        LIMIT 1
    `).Scan(
		&item.TourDateID, &item.ArtistID, &item.ArtistName, &item.ArtistKoreanName,
		&item.TourID, &item.TourName, &item.City, &item.Venue, &item.Country,
		&item.Region, &item.ConcertDate, &item.EndDate, &item.IsSeoulKickoff,
		&item.IsEncore, &item.IsFinale, &item.HasTBDInTour, &item.Status,
		&item.TicketURL, &item.TicketStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next concert: %w", err)
	}
	return &item, nil
}
