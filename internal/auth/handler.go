package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler-api/pkg/response"
)

// Handler exposes the HTTP endpoints for the session lifecycle.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type SignupRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrPasswordTooShort)
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile, token, err := h.svc.Signup(r.Context(), req.Username, req.FullName, req.Email, req.Password)
	if err != nil {
		if isValidationErr(err) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("signup failed", "err", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.setSessionCookie(w, token)
	response.JSON(w, http.StatusCreated, profile)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile, token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("login failed", "err", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.setSessionCookie(w, token)
	response.JSON(w, http.StatusOK, profile)
}

// Logout clears the session cookie unconditionally. There is no server-side
// session state to revoke.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	response.Message(w, http.StatusOK, "logged out successfully")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := CurrentUser(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profile, err := h.svc.CurrentProfile(r.Context(), u.ID)
	if err != nil {
		h.logger.Errorw("fetch current profile failed", "err", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.svc.codec.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
