package tour

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/models"
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

// CreateTour handles POST /tours.
func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "CreateTour")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateTour"))

	var req api.CreateTourRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.TourName == "" || req.ArtistID == uuid.Nil {
		span.SetStatus(codes.Error, "missing required fields")
		api.ErrorResponse(w, r, http.StatusBadRequest, "artist_id and tour_name are required")
		return
	}

	created, err := h.service.CreateTour(ctx, req)
	if err != nil {
		if errors.Is(err, ErrArtistNotFound) {
			span.SetStatus(codes.Error, "artist not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "artist not found")
			return
		}
		l.ErrorContext(ctx, "Failed to create tour", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to create tour")
		return
	}

	span.SetStatus(codes.Ok, "tour created")
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// ListTours handles GET /tours?artist_id=&status=&year=.
func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "ListTours")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListTours"))

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
	var status *models.TourStatus
	if raw := q.Get("status"); raw != "" {
		s := models.TourStatus(raw)
		status = &s
	}
	var year *int
	if raw := q.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			span.SetStatus(codes.Error, "invalid year")
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid year value")
			return
		}
		year = &y
	}

	resp, err := h.service.ListTours(ctx, artistID, status, year)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			span.SetStatus(codes.Error, "invalid status")
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to list tours", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list tours")
		return
	}

	span.SetStatus(codes.Ok, "tours listed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetTour handles GET /tours/{tourID}.
func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "GetTour")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetTour"))

	tourID, ok := uuidParam(w, r, span, "tourID")
	if !ok {
		return
	}

	detail, err := h.service.GetTour(ctx, tourID)
	if err != nil {
		if errors.Is(err, ErrTourNotFound) {
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "tour not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get tour", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to get tour")
		return
	}

	span.SetStatus(codes.Ok, "tour returned")
	api.WriteJSONResponse(w, r, http.StatusOK, detail)
}

// UpdateTour handles PUT /tours/{tourID}.
func (h *Handler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "UpdateTour")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateTour"))

	tourID, ok := uuidParam(w, r, span, "tourID")
	if !ok {
		return
	}

	var req api.UpdateTourRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateTour(ctx, tourID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTourNotFound):
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "tour not found")
		case errors.Is(err, ErrInvalidStatus):
			span.SetStatus(codes.Error, "invalid status")
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "Failed to update tour", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to update tour")
		}
		return
	}

	span.SetStatus(codes.Ok, "tour updated")
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteTour handles DELETE /tours/{tourID}.
func (h *Handler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "DeleteTour")
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteTour"))

	tourID, ok := uuidParam(w, r, span, "tourID")
	if !ok {
		return
	}

	if err := h.service.DeleteTour(ctx, tourID); err != nil {
		if errors.Is(err, ErrTourNotFound) {
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "tour not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete tour", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to delete tour")
		return
	}

	span.SetStatus(codes.Ok, "tour deleted")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// AddTourDate handles POST /tours/{tourID}/dates.
func (h *Handler) AddTourDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "AddTourDate")
	defer span.End()

	l := h.logger.With(slog.String("handler", "AddTourDate"))

	tourID, ok := uuidParam(w, r, span, "tourID")
	if !ok {
		return
	}

	var req api.CreateTourDateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.City == "" || req.Country == "" {
		span.SetStatus(codes.Error, "missing required fields")
		api.ErrorResponse(w, r, http.StatusBadRequest, "city and country are required")
		return
	}

	date, err := h.service.AddTourDate(ctx, tourID, req)
	if err != nil {
		if errors.Is(err, ErrTourNotFound) {
			span.SetStatus(codes.Error, "tour not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "tour not found")
			return
		}
		l.ErrorContext(ctx, "Failed to add tour date", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "add failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to add tour date")
		return
	}

	span.SetStatus(codes.Ok, "tour date added")
	api.WriteJSONResponse(w, r, http.StatusCreated, date)
}

// UpdateTourDate handles PUT /tours/{tourID}/dates/{dateID}.
func (h *Handler) UpdateTourDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "UpdateTourDate")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateTourDate"))

	tourID, ok := uuidParam(w, r, span, "tourID")
	if !ok {
		return
	}
	dateID, ok := uuidParam(w, r, span, "dateID")
	if !ok {
		return
	}

	var req api.UpdateTourDateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	date, err := h.service.UpdateTourDate(ctx, tourID, dateID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDateNotFound):
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "tour date not found")
		case errors.Is(err, ErrInvalidStatus):
			span.SetStatus(codes.Error, "invalid status")
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "Failed to update tour date", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to update tour date")
		}
		return
	}

	span.SetStatus(codes.Ok, "tour date updated")
	api.WriteJSONResponse(w, r, http.StatusOK, date)
}

// DeleteTourDate handles DELETE /tours/{tourID}/dates/{dateID}.
func (h *Handler) DeleteTourDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TourHandler").Start(r.Context(), "DeleteTourDate")
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteTourDate"))

	tourID, ok := uuidParam(w, r, span, "tourID")
	if !ok {
		return
	}
	dateID, ok := uuidParam(w, r, span, "dateID")
	if !ok {
		return
	}

	if err := h.service.DeleteTourDate(ctx, tourID, dateID); err != nil {
		if errors.Is(err, ErrDateNotFound) {
			span.SetStatus(codes.Error, "not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "tour date not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete tour date", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to delete tour date")
		return
	}

	span.SetStatus(codes.Ok, "tour date deleted")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func uuidParam(w http.ResponseWriter, r *http.Request, span trace.Span, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		span.SetStatus(codes.Error, "invalid "+name)
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid "+name+" format")
		return uuid.Nil, false
	}
	span.SetAttributes(attribute.String(name, id.String()))
	return id, true
}
