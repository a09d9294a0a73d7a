package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/warblerhq/warbler-api/internal/user/entity"
)

func gateRequest(t *testing.T, svc *Service, cookie *http.Cookie) (*httptest.ResponseRecorder, *entity.User) {
	t.Helper()
	var seen *entity.User
	handler := svc.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestGateRejectsMissingToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	rec, seen := gateRequest(t, svc, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestGateRejectsGarbageToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	rec, seen := gateRequest(t, svc, &http.Cookie{Name: CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestGateRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	svc, users := newTestService(t)
	expiredCodec := NewTokenCodec("test-secret", -1*time.Minute)
	expiredSvc := NewService(users, BcryptHasher{Cost: bcrypt.MinCost}, expiredCodec, zap.NewNop().Sugar())

	profile, _, err := svc.Signup(t.Context(), "frank", "Frank", "frank@x.com", "secret1")
	require.NoError(t, err)

	tok, err := expiredSvc.codec.Issue(profile.ID)
	require.NoError(t, err)

	rec, seen := gateRequest(t, svc, &http.Cookie{Name: CookieName, Value: tok})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestGateRejectsTokenForDeletedUser(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	// token is valid but its subject was never persisted
	tok, err := svc.codec.Issue("ghost-user-id")
	require.NoError(t, err)

	rec, seen := gateRequest(t, svc, &http.Cookie{Name: CookieName, Value: tok})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, seen)
}

func TestGateForwardsWithIdentity(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	profile, tok, err := svc.Signup(t.Context(), "grace", "Grace", "grace@x.com", "secret1")
	require.NoError(t, err)

	rec, seen := gateRequest(t, svc, &http.Cookie{Name: CookieName, Value: tok})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, profile.ID, seen.ID)
	assert.Equal(t, "grace", seen.Username)
}
