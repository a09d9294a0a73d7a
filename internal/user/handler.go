package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler-api/internal/auth"
	"github.com/warblerhq/warbler-api/internal/user/repo"
	"github.com/warblerhq/warbler-api/pkg/response"
)

// Handler exposes the social-graph HTTP endpoints. All of them sit behind
// the session gate.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GetProfile handles GET /users/profile/{username}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	profile, err := h.svc.GetProfile(r.Context(), username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Errorw("get profile failed", "err", err, "username", username)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// Follow handles POST /users/follow/{id}.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	u := auth.CurrentUser(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := r.PathValue("id")
	followed, err := h.svc.FollowOrUnfollow(r.Context(), u.ID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfFollow):
			response.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repo.ErrNotFound):
			response.Error(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Errorw("follow toggle failed", "err", err, "actor", u.ID, "target", targetID)
			response.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	if followed {
		response.Message(w, http.StatusOK, "user followed successfully")
		return
	}
	response.Message(w, http.StatusOK, "user unfollowed successfully")
}

// Suggested handles GET /users/suggested.
func (h *Handler) Suggested(w http.ResponseWriter, r *http.Request) {
	u := auth.CurrentUser(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	suggestions, err := h.svc.Suggest(r.Context(), u.ID)
	if err != nil {
		h.logger.Errorw("suggest users failed", "err", err, "actor", u.ID)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	response.JSON(w, http.StatusOK, suggestions)
}

// Update handles POST /users/update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u := auth.CurrentUser(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile, err := h.svc.UpdateProfile(r.Context(), u.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordPair),
			errors.Is(err, ErrWrongPassword),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrUsernameTaken),
			errors.Is(err, auth.ErrEmailTaken):
			response.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repo.ErrNotFound):
			response.Error(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Errorw("profile update failed", "err", err, "actor", u.ID)
			response.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	response.JSON(w, http.StatusOK, profile)
}
