package concert

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/altsang/kpop-concert-tracker/internal/api"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// ListConcerts handles GET /concerts with the dashboard filter set.
func (h *Handler) ListConcerts(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConcertHandler").Start(r.Context(), "ListConcerts")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListConcerts"))

	filter, err := parseFilter(r)
	if err != nil {
		span.SetStatus(codes.Error, "invalid filter")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.ListConcerts(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list concerts", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list concerts")
		return
	}

	span.SetStatus(codes.Ok, "concerts listed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func parseFilter(r *http.Request) (api.ConcertFilter, error) {
	q := r.URL.Query()
	filter := api.ConcertFilter{
		Cities:    splitParam(q.Get("cities")),
		Countries: splitParam(q.Get("countries")),
		// past and TBD rows are shown unless explicitly excluded
		IncludePast: q.Get("include_past") != "false",
		IncludeTBD:  q.Get("include_tbd") != "false",
		SeoulOnly:   q.Get("seoul_only") == "true",
		EncoreOnly:  q.Get("encore_only") == "true",
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
	}

	for _, raw := range splitParam(q.Get("artist_ids")) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errInvalid("artist_ids")
		}
		filter.ArtistIDs = append(filter.ArtistIDs, id)
	}
	var err error
	if filter.DateFrom, err = parseDateParam(q.Get("date_from")); err != nil {
		return filter, errInvalid("date_from")
	}
	if filter.DateTo, err = parseDateParam(q.Get("date_to")); err != nil {
		return filter, errInvalid("date_to")
	}
	if raw := q.Get("page"); raw != "" {
		if filter.Page, err = strconv.Atoi(raw); err != nil {
			return filter, errInvalid("page")
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		if filter.PageSize, err = strconv.Atoi(raw); err != nil {
			return filter, errInvalid("page_size")
		}
	}
	return filter, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type paramError string

func (e paramError) Error() string { return "invalid " + string(e) + " value" }

func errInvalid(name string) error { return paramError(name) }
