package concert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altsang/kpop-concert-tracker/internal/api"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository defines read access to the flattened concert listing.
type Repository interface {
	ListConcerts(ctx context.Context, filter api.ConcertFilter) ([]api.ConcertDisplayItem, int, error)
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

// buildConcertQuery renders the WHERE/ORDER BY/LIMIT clauses for a filter.
// Only favorite artists participate in the listing.
func buildConcertQuery(filter api.ConcertFilter) (string, []interface{}) {
	var (
		conditions = []string{"a.is_favorite = TRUE"}
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.ArtistIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("a.id = ANY(%s)", arg(filter.ArtistIDs)))
	}
	if len(filter.Cities) > 0 {
		lowered := make([]string, len(filter.Cities))
		for i, c := range filter.Cities {
			lowered[i] = strings.ToLower(c)
		}
		conditions = append(conditions, fmt.Sprintf("LOWER(td.city) = ANY(%s)", arg(lowered)))
	}
	if len(filter.Countries) > 0 {
		lowered := make([]string, len(filter.Countries))
		for i, c := range filter.Countries {
			lowered[i] = strings.ToLower(c)
		}
		conditions = append(conditions, fmt.Sprintf("LOWER(td.country) = ANY(%s)", arg(lowered)))
	}
	// TBD rows have no date and always pass the date window
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("(td.date IS NULL OR td.date >= %s)", arg(*filter.DateFrom)))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("(td.date IS NULL OR td.date <= %s)", arg(*filter.DateTo)))
	}
	if !filter.IncludePast {
		conditions = append(conditions, "(td.date IS NULL OR td.date >= CURRENT_DATE)")
	}
	if !filter.IncludeTBD {
		conditions = append(conditions, "td.date IS NOT NULL")
	}
	if filter.SeoulOnly {
		conditions = append(conditions, "LOWER(td.city) IN ('seoul', '서울')")
	}
	if filter.EncoreOnly {
		conditions = append(conditions, "td.is_encore = TRUE")
	}

	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}
	var sortKey string
	switch filter.SortBy {
	case "artist":
		sortKey = "a.name " + direction
	case "city":
		sortKey = "td.city " + direction
	default:
		sortKey = "td.date " + direction
	}
	// TBD rows sort after dated rows regardless of direction
	orderBy := "(td.date IS NULL) ASC, " + sortKey + ", td.created_at ASC"

	offset := (filter.Page - 1) * filter.PageSize
	clause := fmt.Sprintf("WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		strings.Join(conditions, " AND "), orderBy, arg(filter.PageSize), arg(offset))
	return clause, args
}

func (r *PostgresRepository) ListConcerts(ctx context.Context, filter api.ConcertFilter) ([]api.ConcertDisplayItem, int, error) {
	clause, args := buildConcertQuery(filter)
	query := `
        SELECT
            td.id, a.id, a.name, a.korean_name, t.id, t.tour_name,
            td.city, td.venue, td.country, td.region, td.date, td.end_date,
            td.is_seoul_kickoff, td.is_encore, td.is_finale, t.has_tbd_dates,
            td.status, td.ticket_url, td.ticket_status,
            COUNT(*) OVER() AS total_count
        FROM tour_dates td
        JOIN tours t ON td.tour_id = t.id
        JOIN artists a ON t.artist_id = a.id
    ` + clause

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query concerts: %w", err)
	}
	defer rows.Close()

	var (
		concerts []api.ConcertDisplayItem
		total    int
	)
	for rows.Next() {
		var item api.ConcertDisplayItem
		if err := rows.Scan(
			&item.TourDateID, &item.ArtistID, &item.ArtistName, &item.ArtistKoreanName,
			&item.TourID, &item.TourName, &item.City, &item.Venue, &item.Country,
			&item.Region, &item.ConcertDate, &item.EndDate, &item.IsSeoulKickoff,
			&item.IsEncore, &item.IsFinale, &item.HasTBDInTour, &item.Status,
			&item.TicketURL, &item.TicketStatus, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan concert row: %w", err)
		}
		concerts = append(concerts, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading concert rows: %w", err)
	}
	return concerts, total, nil
}
