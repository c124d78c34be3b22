package announcement

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
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

// GetStatus handles GET /twitter/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AnnouncementHandler").Start(r.Context(), "GetStatus")
	defer span.End()

	status := h.service.GetStatus(ctx)
	span.SetStatus(codes.Ok, "status returned")
	api.WriteJSONResponse(w, r, http.StatusOK, status)
}

// Refresh handles POST /twitter/refresh. The body is optional.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AnnouncementHandler").Start(r.Context(), "Refresh")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Refresh"))

	var req api.RefreshRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil && !isEmptyBody(err) {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.service.Refresh(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			span.SetStatus(codes.Error, "not configured")
			api.ErrorResponse(w, r, http.StatusServiceUnavailable,
				"Twitter API not configured. Set the TWITTER_* environment variables")
			return
		}
		l.ErrorContext(ctx, "Refresh failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to refresh announcements")
		return
	}

	span.SetStatus(codes.Ok, "refresh complete")
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// ListAnnouncements handles GET /twitter/announcements.
func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AnnouncementHandler").Start(r.Context(), "ListAnnouncements")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListAnnouncements"))

	q := r.URL.Query()
	var artistID *uuid.UUID
	if raw := q.Get("artist_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			span.SetStatus(codes.Error, "invalid artist_id")
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid artist_id format")
			return
		}
		artistID = &id
	}
	var processed *bool
	if raw := q.Get("processed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			span.SetStatus(codes.Error, "invalid processed")
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid processed value")
			return
		}
		processed = &v
	}
	officialOnly := q.Get("official_only") == "true"
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	resp, err := h.service.ListAnnouncements(ctx, artistID, processed, officialOnly, limit, offset)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list announcements", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list announcements")
		return
	}

	span.SetStatus(codes.Ok, "announcements listed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// ParseTest handles POST /twitter/parse-test.
func (h *Handler) ParseTest(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AnnouncementHandler").Start(r.Context(), "ParseTest")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ParseTest"))

	var req api.ParseTestRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := h.service.ParseTest(ctx, req.TweetText)
	span.SetStatus(codes.Ok, "text parsed")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// ProcessAnnouncement handles POST /twitter/process/{announcementID}.
func (h *Handler) ProcessAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AnnouncementHandler").Start(r.Context(), "ProcessAnnouncement")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ProcessAnnouncement"))

	id, err := uuid.Parse(chi.URLParam(r, "announcementID"))
	if err != nil {
		span.SetStatus(codes.Error, "invalid announcement ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid announcementID format")
		return
	}

	result, err := h.service.ProcessAnnouncement(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAnnouncementNotFound) {
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "announcement not found")
			return
		}
		l.ErrorContext(ctx, "Failed to process announcement", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "process failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to process announcement")
		return
	}

	span.SetStatus(codes.Ok, "announcement processed")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// isEmptyBody reports whether the decode error came from an absent body,
// which Refresh treats as an empty request.
func isEmptyBody(err error) bool {
	return err != nil && (errors.Is(err, io.EOF) || err.Error() == "body must not be empty")
}
