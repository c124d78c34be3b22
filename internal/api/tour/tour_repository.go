package tour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altsang/kpop-concert-tracker/internal/models"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository defines the persistence contract for tours and their dates.
type Repository interface {
	ArtistExists(ctx context.Context, artistID uuid.UUID) (bool, error)
	CreateTourWithDates(ctx context.Context, tour models.Tour, dates []models.TourDate) (uuid.UUID, error)
	GetTour(ctx context.Context, id uuid.UUID) (*models.TourDetail, error)
	ListTours(ctx context.Context, artistID *uuid.UUID, status *models.TourStatus, year *int) ([]models.TourDetail, error)
	UpdateTour(ctx context.Context, tour models.Tour) error
	DeleteTour(ctx context.Context, id uuid.UUID) error

	ListTourDates(ctx context.Context, tourID uuid.UUID) ([]models.TourDate, error)
	GetTourDate(ctx context.Context, dateID uuid.UUID) (*models.TourDate, error)
	AddTourDate(ctx context.Context, date models.TourDate) (uuid.UUID, error)
	UpdateTourDate(ctx context.Context, date models.TourDate) error
	DeleteTourDate(ctx context.Context, dateID uuid.UUID) error
	SetSeoulKickoff(ctx context.Context, tourID uuid.UUID, dateID *uuid.UUID) error
	AdjustShowsAnnounced(ctx context.Context, tourID uuid.UUID, delta int) error
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

const tourColumns = `
    t.id, t.artist_id, t.tour_name, t.year, t.status, t.has_tbd_dates,
    t.has_tbd_venues, t.total_shows_announced, t.total_shows_estimated,
    t.description, t.announcement_date, t.tour_start_date, t.tour_end_date,
    t.regions, t.created_at, t.updated_at
`

const dateColumns = `
    id, tour_id, city, venue, country, region, date, end_date, show_time,
    timezone, is_seoul_kickoff, is_encore, is_finale, is_added_date, status,
    ticket_url, ticket_status, on_sale_date, notes, original_date,
    created_at, updated_at
`

const insertDateQuery = `
    INSERT INTO tour_dates (
        tour_id, city, venue, country, region, date, end_date, show_time,
        timezone, is_seoul_kickoff, is_encore, is_finale, is_added_date,
        status, ticket_url, ticket_status, on_sale_date, notes, original_date
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
        $15, $16, $17, $18, $19)
    RETURNING id
`

func (r *PostgresRepository) ArtistExists(ctx context.Context, artistID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`, artistID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check artist existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CreateTourWithDates(ctx context.Context, tour models.Tour, dates []models.TourDate) (uuid.UUID, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var tourID uuid.UUID
	err = tx.QueryRow(ctx, `
        INSERT INTO tours (
            artist_id, tour_name, year, status, has_tbd_dates, has_tbd_venues,
            total_shows_announced, total_shows_estimated, description,
            announcement_date, tour_start_date, tour_end_date, regions
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id
    `,
		tour.ArtistID, tour.TourName, tour.Year, tour.Status, tour.HasTBDDates,
		tour.HasTBDVenues, tour.TotalShowsAnnounced, tour.TotalShowsEstimated,
		tour.Description, tour.AnnouncementDate, tour.TourStartDate,
		tour.TourEndDate, tour.Regions,
	).Scan(&tourID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert tour: %w", err)
	}

	for _, d := range dates {
		var dateID uuid.UUID
		err = tx.QueryRow(ctx, insertDateQuery,
			tourID, d.City, d.Venue, d.Country, d.Region, d.Date, d.EndDate,
			d.ShowTime, d.Timezone, d.IsSeoulKickoff, d.IsEncore, d.IsFinale,
			d.IsAddedDate, d.Status, d.TicketURL, d.TicketStatus,
			d.OnSaleDate, d.Notes, d.OriginalDate,
		).Scan(&dateID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert tour date: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tourID, nil
}

func scanTourDetail(row pgx.Row) (*models.TourDetail, error) {
	var d models.TourDetail
	err := row.Scan(
		&d.ID, &d.ArtistID, &d.TourName, &d.Year, &d.Status, &d.HasTBDDates,
		&d.HasTBDVenues, &d.TotalShowsAnnounced, &d.TotalShowsEstimated,
		&d.Description, &d.AnnouncementDate, &d.TourStartDate, &d.TourEndDate,
		&d.Regions, &d.CreatedAt, &d.UpdatedAt, &d.ArtistName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) GetTour(ctx context.Context, id uuid.UUID) (*models.TourDetail, error) {
	query := `
        SELECT ` + tourColumns + `, a.name
        FROM tours t JOIN artists a ON t.artist_id = a.id
        WHERE t.id = $1
    `
	detail, err := scanTourDetail(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return detail, nil
}

func (r *PostgresRepository) ListTours(ctx context.Context, artistID *uuid.UUID, status *models.TourStatus, year *int) ([]models.TourDetail, error) {
	query := `
        SELECT ` + tourColumns + `, a.name
        FROM tours t JOIN artists a ON t.artist_id = a.id
        WHERE ($1::uuid IS NULL OR t.artist_id = $1)
          AND ($2::varchar IS NULL OR t.status = $2)
          AND ($3::int IS NULL OR t.year = $3)
        ORDER BY t.announcement_date DESC NULLS LAST, t.created_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query, artistID, status, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	defer rows.Close()

	var tours []models.TourDetail
	for rows.Next() {
		detail, err := scanTourDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tour row: %w", err)
		}
		tours = append(tours, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading tour rows: %w", err)
	}
	return tours, nil
}

func (r *PostgresRepository) UpdateTour(ctx context.Context, tour models.Tour) error {
	query := `
        UPDATE tours SET
            tour_name = $2, year = $3, status = $4, has_tbd_dates = $5,
            has_tbd_venues = $6, total_shows_estimated = $7, description = $8,
            announcement_date = $9, tour_start_date = $10, tour_end_date = $11,
            regions = $12, updated_at = now()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query,
		tour.ID, tour.TourName, tour.Year, tour.Status, tour.HasTBDDates,
		tour.HasTBDVenues, tour.TotalShowsEstimated, tour.Description,
		tour.AnnouncementDate, tour.TourStartDate, tour.TourEndDate, tour.Regions,
	)
	if err != nil {
		return fmt.Errorf("failed to update tour: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) DeleteTour(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTourDate(row pgx.Row) (*models.TourDate, error) {
	var d models.TourDate
	err := row.Scan(
		&d.ID, &d.TourID, &d.City, &d.Venue, &d.Country, &d.Region, &d.Date,
		&d.EndDate, &d.ShowTime, &d.Timezone, &d.IsSeoulKickoff, &d.IsEncore,
		&d.IsFinale, &d.IsAddedDate, &d.Status, &d.TicketURL, &d.TicketStatus,
		&d.OnSaleDate, &d.Notes, &d.OriginalDate, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) ListTourDates(ctx context.Context, tourID uuid.UUID) ([]models.TourDate, error) {
	query := `SELECT ` + dateColumns + ` FROM tour_dates WHERE tour_id = $1 ORDER BY date ASC NULLS LAST, created_at ASC`
	rows, err := r.pgpool.Query(ctx, query, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tour dates: %w", err)
	}
	defer rows.Close()

	var dates []models.TourDate
	for rows.Next() {
		d, err := scanTourDate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tour date row: %w", err)
		}
		dates = append(dates, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading tour date rows: %w", err)
	}
	return dates, nil
}

func (r *PostgresRepository) GetTourDate(ctx context.Context, dateID uuid.UUID) (*models.TourDate, error) {
	query := `SELECT ` + dateColumns + ` FROM tour_dates WHERE id = $1`
	date, err := scanTourDate(r.pgpool.QueryRow(ctx, query, dateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tour date: %w", err)
	}
	return date, nil
}

func (r *PostgresRepository) AddTourDate(ctx context.Context, date models.TourDate) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, insertDateQuery,
		date.TourID, date.City, date.Venue, date.Country, date.Region,
		date.Date, date.EndDate, date.ShowTime, date.Timezone,
		date.IsSeoulKickoff, date.IsEncore, date.IsFinale, date.IsAddedDate,
		date.Status, date.TicketURL, date.TicketStatus, date.OnSaleDate,
		date.Notes, date.OriginalDate,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert tour date: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) UpdateTourDate(ctx context.Context, date models.TourDate) error {
	query := `
        UPDATE tour_dates SET
            city = $2, venue = $3, country = $4, region = $5, date = $6,
            end_date = $7, show_time = $8, timezone = $9, is_encore = $10,
            is_finale = $11, status = $12, ticket_url = $13,
            ticket_status = $14, on_sale_date = $15, notes = $16,
            original_date = $17, updated_at = now()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query,
		date.ID, date.City, date.Venue, date.Country, date.Region, date.Date,
		date.EndDate, date.ShowTime, date.Timezone, date.IsEncore,
		date.IsFinale, date.Status, date.TicketURL, date.TicketStatus,
		date.OnSaleDate, date.Notes, date.OriginalDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update tour date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) DeleteTourDate(ctx context.Context, dateID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM tour_dates WHERE id = $1`, dateID)
	if err != nil {
		return fmt.Errorf("failed to delete tour date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetSeoulKickoff clears the kickoff flag across the tour and, when dateID is
// non-nil, marks that date as the kickoff. Runs in one transaction so the
// tour never carries two kickoff flags.
func (r *PostgresRepository) SetSeoulKickoff(ctx context.Context, tourID uuid.UUID, dateID *uuid.UUID) error {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE tour_dates SET is_seoul_kickoff = FALSE WHERE tour_id = $1 AND is_seoul_kickoff = TRUE`, tourID); err != nil {
		return fmt.Errorf("failed to clear kickoff flags: %w", err)
	}
	if dateID != nil {
		if _, err := tx.Exec(ctx, `UPDATE tour_dates SET is_seoul_kickoff = TRUE WHERE id = $1`, *dateID); err != nil {
			return fmt.Errorf("failed to mark kickoff date: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AdjustShowsAnnounced(ctx context.Context, tourID uuid.UUID, delta int) error {
	_, err := r.pgpool.Exec(ctx, `
        UPDATE tours
        SET total_shows_announced = GREATEST(total_shows_announced + $2, 0), updated_at = now()
        WHERE id = $1
    `, tourID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust announced show count: %w", err)
	}
	return nil
}
