package dashboard

import (
	"log/slog"
	"net/http"

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

// GetSummary handles GET /dashboard/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DashboardHandler").Start(r.Context(), "GetSummary")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetSummary"))

	summary, err := h.service.GetSummary(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load dashboard summary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load dashboard summary")
		return
	}

	span.SetStatus(codes.Ok, "summary returned")
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}
