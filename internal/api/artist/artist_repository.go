package artist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altsang/kpop-concert-tracker/internal/models"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository defines the persistence contract for artists.
type Repository interface {
	CreateArtist(ctx context.Context, artist models.Artist) (uuid.UUID, error)
	GetArtist(ctx context.Context, id uuid.UUID) (*models.Artist, error)
	FindArtistByName(ctx context.Context, name string) (*models.Artist, error)
	FindArtistByHandle(ctx context.Context, handle string) (*models.Artist, error)
	ListArtists(ctx context.Context, favoritesOnly bool, search string) ([]models.ArtistDetail, error)
	UpdateArtist(ctx context.Context, artist models.Artist) error
	DeleteArtist(ctx context.Context, id uuid.UUID) error
}

// PGXPool is the subset of pgxpool.Pool the repository needs.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresRepository(pgxpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgxpool,
	}
}

const artistColumns = `
    id, name, korean_name, twitter_handle, official_twitter, agency_twitter,
    is_favorite, aliases, group_type, members_count, debut_year, created_at, updated_at
`

func scanArtist(row pgx.Row) (*models.Artist, error) {
	var a models.Artist
	err := row.Scan(
		&a.ID, &a.Name, &a.KoreanName, &a.TwitterHandle, &a.OfficialTwitter,
		&a.AgencyTwitter, &a.IsFavorite, &a.Aliases, &a.GroupType,
		&a.MembersCount, &a.DebutYear, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) CreateArtist(ctx context.Context, artist models.Artist) (uuid.UUID, error) {
	query := `
        INSERT INTO artists (
            name, korean_name, twitter_handle, official_twitter, agency_twitter,
            is_favorite, aliases, group_type, members_count, debut_year
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id
    `
	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		artist.Name, artist.KoreanName, artist.TwitterHandle, artist.OfficialTwitter,
		artist.AgencyTwitter, artist.IsFavorite, artist.Aliases, artist.GroupType,
		artist.MembersCount, artist.DebutYear,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert artist: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetArtist(ctx context.Context, id uuid.UUID) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE id = $1`
	artist, err := scanArtist(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return artist, nil
}

func (r *PostgresRepository) FindArtistByName(ctx context.Context, name string) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE name = $1`
	artist, err := scanArtist(r.pgpool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find artist by name: %w", err)
	}
	return artist, nil
}

func (r *PostgresRepository) FindArtistByHandle(ctx context.Context, handle string) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE twitter_handle = $1`
	artist, err := scanArtist(r.pgpool.QueryRow(ctx, query, handle))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find artist by handle: %w", err)
	}
	return artist, nil
}

func (r *PostgresRepository) ListArtists(ctx context.Context, favoritesOnly bool, search string) ([]models.ArtistDetail, error) {
	query := `
        SELECT ` + artistColumns + `,
            (SELECT COUNT(*) FROM tours t WHERE t.artist_id = artists.id) AS tours_count,
            (SELECT COUNT(*) FROM tour_dates td
                JOIN tours t ON td.tour_id = t.id
                WHERE t.artist_id = artists.id AND td.date >= CURRENT_DATE) AS upcoming_shows_count
        FROM artists
        WHERE ($1 = FALSE OR is_favorite = TRUE)
          AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR korean_name ILIKE '%' || $2 || '%')
        ORDER BY name
    `
	rows, err := r.pgpool.Query(ctx, query, favoritesOnly, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()

	var artists []models.ArtistDetail
	for rows.Next() {
		var d models.ArtistDetail
		if err := rows.Scan(
			&d.ID, &d.Name, &d.KoreanName, &d.TwitterHandle, &d.OfficialTwitter,
			&d.AgencyTwitter, &d.IsFavorite, &d.Aliases, &d.GroupType,
			&d.MembersCount, &d.DebutYear, &d.CreatedAt, &d.UpdatedAt,
			&d.ToursCount, &d.UpcomingShowsCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		artists = append(artists, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading artist rows: %w", err)
	}
	return artists, nil
}

func (r *PostgresRepository) UpdateArtist(ctx context.Context, artist models.Artist) error {
	query := `
        UPDATE artists SET
            name = $2, korean_name = $3, twitter_handle = $4, official_twitter = $5,
            agency_twitter = $6, is_favorite = $7, aliases = $8, group_type = $9,
            members_count = $10, debut_year = $11, updated_at = now()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query,
		artist.ID, artist.Name, artist.KoreanName, artist.TwitterHandle,
		artist.OfficialTwitter, artist.AgencyTwitter, artist.IsFavorite,
		artist.Aliases, artist.GroupType, artist.MembersCount, artist.DebutYear,
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) DeleteArtist(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
