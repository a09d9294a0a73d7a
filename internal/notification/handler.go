package notification

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler-api/internal/auth"
	"github.com/warblerhq/warbler-api/pkg/response"
)

// Handler exposes the notification endpoints for the authenticated user.
type Handler struct {
	repo   Repository
	logger *zap.SugaredLogger
}

func NewHandler(repo Repository, logger *zap.SugaredLogger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List returns the caller's notifications newest-first and marks them read.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u := auth.CurrentUser(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.repo.ListByRecipient(r.Context(), u.ID)
	if err != nil {
		h.logger.Errorw("list notifications failed", "err", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := h.repo.MarkAllRead(r.Context(), u.ID); err != nil {
		h.logger.Warnw("mark notifications read failed", "err", err)
	}
	response.JSON(w, http.StatusOK, items)
}

// Clear deletes all of the caller's notifications.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	u := auth.CurrentUser(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.repo.DeleteByRecipient(r.Context(), u.ID); err != nil {
		h.logger.Errorw("delete notifications failed", "err", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	response.Message(w, http.StatusOK, "notifications deleted successfully")
}
