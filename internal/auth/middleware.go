package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/warblerhq/warbler-api/internal/user/entity"
	"github.com/warblerhq/warbler-api/internal/user/repo"
	"github.com/warblerhq/warbler-api/pkg/response"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "jwt"

type ctxKey int

const userCtxKey ctxKey = iota

// CurrentUser returns the authenticated user attached by RequireSession,
// or nil outside a protected handler.
func CurrentUser(ctx context.Context) *entity.User {
	u, _ := ctx.Value(userCtxKey).(*entity.User)
	return u
}

// RequireSession is the gate in front of every protected route. It reads the
// session cookie, verifies the token, resolves the referenced user and
// attaches it to the request context. Missing or bad tokens are rejected with
// 401; a valid token whose user no longer exists yields 404.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			response.Error(w, http.StatusUnauthorized, "unauthorized: no token provided")
			return
		}
		userID, err := s.codec.Verify(cookie.Value)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "unauthorized: invalid token")
			return
		}
		u, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "user not found")
				return
			}
			s.logger.Errorw("session gate user lookup failed", "err", err)
			response.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, u)))
	})
}
