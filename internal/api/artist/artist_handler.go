package artist

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

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

// CreateArtist handles POST /artists.
func (h *Handler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ArtistHandler").Start(r.Context(), "CreateArtist")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateArtist"))

	var req api.CreateArtistRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		span.SetStatus(codes.Error, "missing name")
		api.ErrorResponse(w, r, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.service.CreateArtist(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrDuplicateHandle):
			span.SetStatus(codes.Error, "duplicate artist")
			api.ErrorResponse(w, r, http.StatusConflict, err.Error())
		default:
			l.ErrorContext(ctx, "Failed to create artist", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "create failed")
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to create artist")
		}
		return
	}

	span.SetStatus(codes.Ok, "artist created")
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// ListArtists handles GET /artists?favorites_only=&search=.
func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ArtistHandler").Start(r.Context(), "ListArtists")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListArtists"))

	favoritesOnly := r.URL.Query().Get("favorites_only") == "true"
	search := r.URL.Query().Get("search")

	resp, err := h.service.ListArtists(ctx, favoritesOnly, search)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list artists", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list artists")
		return
	}

	span.SetStatus(codes.Ok, "artists listed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetArtist handles GET /artists/{artistID}.
func (h *Handler) GetArtist(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ArtistHandler").Start(r.Context(), "GetArtist")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetArtist"))

	id, ok := h.artistIDParam(w, r, span)
	if !ok {
		return
	}

	artist, err := h.service.GetArtist(ctx, id)
	if err != nil {
		if errors.Is(err, ErrArtistNotFound) {
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "artist not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get artist", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to get artist")
		return
	}

	span.SetStatus(codes.Ok, "artist returned")
	api.WriteJSONResponse(w, r, http.StatusOK, artist)
}

// UpdateArtist handles PUT /artists/{artistID}.
func (h *Handler) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ArtistHandler").Start(r.Context(), "UpdateArtist")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateArtist"))

	id, ok := h.artistIDParam(w, r, span)
	if !ok {
		return
	}

	var req api.UpdateArtistRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateArtist(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrArtistNotFound) {
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "artist not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update artist", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to update artist")
		return
	}

	span.SetStatus(codes.Ok, "artist updated")
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteArtist handles DELETE /artists/{artistID}.
func (h *Handler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ArtistHandler").Start(r.Context(), "DeleteArtist")
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteArtist"))

	id, ok := h.artistIDParam(w, r, span)
	if !ok {
		return
	}

	if err := h.service.DeleteArtist(ctx, id); err != nil {
		if errors.Is(err, ErrArtistNotFound) {
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "artist not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete artist", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to delete artist")
		return
	}

	span.SetStatus(codes.Ok, "artist deleted")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *Handler) artistIDParam(w http.ResponseWriter, r *http.Request, span trace.Span) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "artistID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		span.SetStatus(codes.Error, "invalid artist ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid artist ID format")
		return uuid.Nil, false
	}
	span.SetAttributes(attribute.String("artist.id", id.String()))
	return id, true
}
