package announcement

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

// Repository defines persistence for announcements and the artist lookups
// the fetcher needs.
type Repository interface {
	ListFavoriteArtists(ctx context.Context) ([]models.Artist, error)
	GetArtistsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Artist, error)

	GetLastTweetID(ctx context.Context, artistID uuid.UUID) (string, error)
	TweetExists(ctx context.Context, tweetID string) (bool, error)
	InsertAnnouncement(ctx context.Context, a models.Announcement) (uuid.UUID, error)
	ListAnnouncements(ctx context.Context, artistID *uuid.UUID, processed *bool, officialOnly bool, limit, offset int) ([]models.AnnouncementDetail, int, error)
	GetAnnouncement(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, confidence float64, extracted []byte, isRelevant bool) error
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

const artistColumns = `
    id, name, korean_name, twitter_handle, official_twitter, agency_twitter,
    is_favorite, aliases, group_type, members_count, debut_year, created_at, updated_at
`

func (r *PostgresRepository) scanArtists(rows pgx.Rows) ([]models.Artist, error) {
	defer rows.Close()
	var artists []models.Artist
	for rows.Next() {
		var a models.Artist
		if err := rows.Scan(
			&a.ID, &a.Name, &a.KoreanName, &a.TwitterHandle, &a.OfficialTwitter,
			&a.AgencyTwitter, &a.IsFavorite, &a.Aliases, &a.GroupType,
			&a.MembersCount, &a.DebutYear, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading artist rows: %w", err)
	}
	return artists, nil
}

func (r *PostgresRepository) ListFavoriteArtists(ctx context.Context) ([]models.Artist, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT `+artistColumns+` FROM artists WHERE is_favorite = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite artists: %w", err)
	}
	return r.scanArtists(rows)
}

func (r *PostgresRepository) GetArtistsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Artist, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get artists by ids: %w", err)
	}
	return r.scanArtists(rows)
}

func (r *PostgresRepository) GetLastTweetID(ctx context.Context, artistID uuid.UUID) (string, error) {
	var tweetID string
	err := r.pgpool.QueryRow(ctx, `
        SELECT tweet_id FROM announcements
        WHERE artist_id = $1
        ORDER BY tweeted_at DESC
        LIMIT 1
    `, artistID).Scan(&tweetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get last tweet id: %w", err)
	}
	return tweetID, nil
}

func (r *PostgresRepository) TweetExists(ctx context.Context, tweetID string) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM announcements WHERE tweet_id = $1)`, tweetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tweet existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) InsertAnnouncement(ctx context.Context, a models.Announcement) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, `
        INSERT INTO announcements (
            artist_id, tour_id, tweet_id, tweet_text, tweet_url, author_handle,
            author_name, tweeted_at, is_official, is_processed, is_relevant,
            media_urls, retweet_count, like_count
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id
    `,
		a.ArtistID, a.TourID, a.TweetID, a.TweetText, a.TweetURL,
		a.AuthorHandle, a.AuthorName, a.TweetedAt, a.IsOfficial,
		a.IsProcessed, a.IsRelevant, a.MediaURLs, a.RetweetCount, a.LikeCount,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert announcement: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListAnnouncements(ctx context.Context, artistID *uuid.UUID, processed *bool, officialOnly bool, limit, offset int) ([]models.AnnouncementDetail, int, error) {
	query := `
        SELECT
            an.id, an.artist_id, an.tour_id, an.tweet_id, an.tweet_text,
            an.tweet_url, an.author_handle, an.author_name, an.tweeted_at,
            an.is_official, an.is_processed, an.is_relevant, an.extracted_data,
            an.parsing_confidence, an.media_urls, an.retweet_count,
            an.like_count, an.created_at, a.name,
            COUNT(*) OVER() AS total_count
        FROM announcements an
        LEFT JOIN artists a ON an.artist_id = a.id
        WHERE ($1::uuid IS NULL OR an.artist_id = $1)
          AND ($2::boolean IS NULL OR an.is_processed = $2)
          AND ($3::boolean = FALSE OR an.is_official = TRUE)
        ORDER BY an.tweeted_at DESC
        LIMIT $4 OFFSET $5
    `
	rows, err := r.pgpool.Query(ctx, query, artistID, processed, officialOnly, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var (
		announcements []models.AnnouncementDetail
		total         int
	)
	for rows.Next() {
		var d models.AnnouncementDetail
		if err := rows.Scan(
			&d.ID, &d.ArtistID, &d.TourID, &d.TweetID, &d.TweetText,
			&d.TweetURL, &d.AuthorHandle, &d.AuthorName, &d.TweetedAt,
			&d.IsOfficial, &d.IsProcessed, &d.IsRelevant, &d.ExtractedData,
			&d.ParsingConfidence, &d.MediaURLs, &d.RetweetCount,
			&d.LikeCount, &d.CreatedAt, &d.ArtistName, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan announcement row: %w", err)
		}
		announcements = append(announcements, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading announcement rows: %w", err)
	}
	return announcements, total, nil
}

func (r *PostgresRepository) GetAnnouncement(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	var a models.Announcement
	err := r.pgpool.QueryRow(ctx, `
        SELECT
            id, artist_id, tour_id, tweet_id, tweet_text, tweet_url,
            author_handle, author_name, tweeted_at, is_official, is_processed,
            is_relevant, extracted_data, parsing_confidence, media_urls,
            retweet_count, like_count, created_at
        FROM announcements WHERE id = $1
    `, id).Scan(
		&a.ID, &a.ArtistID, &a.TourID, &a.TweetID, &a.TweetText, &a.TweetURL,
		&a.AuthorHandle, &a.AuthorName, &a.TweetedAt, &a.IsOfficial,
		&a.IsProcessed, &a.IsRelevant, &a.ExtractedData, &a.ParsingConfidence,
		&a.MediaURLs, &a.RetweetCount, &a.LikeCount, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) MarkProcessed(ctx context.Context, id uuid.UUID, confidence float64, extracted []byte, isRelevant bool) error {
	tag, err := r.pgpool.Exec(ctx, `
        UPDATE announcements
        SET is_processed = TRUE, parsing_confidence = $2, extracted_data = $3, is_relevant = $4
        WHERE id = $1
    `, id, confidence, extracted, isRelevant)
	if err != nil {
		return fmt.Errorf("failed to mark announcement processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
