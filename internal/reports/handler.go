package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tokokas/tokokas/internal/platform/httpx"
	"github.com/tokokas/tokokas/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/daily", h.Daily)
	r.Get("/range", h.Range)
	r.Get("/customers-by-channel", h.CustomersByChannel)
}

func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r, "target_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.Daily(r.Context(), date)
	if err != nil {
		h.logger.Error("daily report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Range(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r, "start_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	end, err := parseDate(r, "end_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if start.After(end) {
		httpx.RespondError(w, fmt.Errorf("%w: start_date must be <= end_date", shared.ErrInvalidInput))
		return
	}
	report, err := h.service.Range(r.Context(), start, end)
	if err != nil {
		h.logger.Error("range report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) CustomersByChannel(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CustomersByChannel(r.Context())
	if err != nil {
		h.logger.Error("customers by channel", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}

func parseDate(r *http.Request, param string) (time.Time, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, param)
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s format, use YYYY-MM-DD", shared.ErrInvalidInput, param)
	}
	return date, nil
}
