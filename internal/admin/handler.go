package admin

import (
	"fmt"
	"log/slog"
	"net/http"

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
	r.Post("/restore", h.Restore)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok || !identity.IsAdmin {
		httpx.RespondError(w, fmt.Errorf("%w: only admins may restore backups", shared.ErrForbidden))
		return
	}
	var payload BackupPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed json body", shared.ErrInvalidInput))
		return
	}
	result, err := h.service.Restore(r.Context(), payload)
	if err != nil {
		h.logger.Error("restore", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
