package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/warblerhq/warbler-api/internal/auth"
	"github.com/warblerhq/warbler-api/internal/notification"
	"github.com/warblerhq/warbler-api/internal/user"
	userrepo "github.com/warblerhq/warbler-api/internal/user/repo"
)

type testEnv struct {
	srv    *httptest.Server
	users  *userrepo.MemoryRepository
	notifs *notification.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := userrepo.NewMemoryRepository()
	notifs := notification.NewMemoryRepository()
	logger := zap.NewNop().Sugar()
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	authSvc := auth.NewService(users, hasher, codec, logger)
	userSvc := user.NewService(users, notifs, hasher, logger)

	handler := New(logger,
		authSvc,
		auth.NewHandler(authSvc, logger),
		user.NewHandler(userSvc, logger),
		notification.NewHandler(notifs, logger),
	)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, users: users, notifs: notifs}
}

// newClient returns an http client with its own cookie jar, i.e. one browser.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func signup(t *testing.T, c *http.Client, base, username, email string) map[string]any {
	t.Helper()
	resp, body := doJSON(t, c, http.MethodPost, base+"/signup", map[string]string{
		"username": username,
		"fullName": "User " + username,
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "signup %s: %v", username, body)
	return body
}

func TestSignupLoginMeScenario(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)

	created := signup(t, c, env.srv.URL, "alice", "alice@x.com")
	assert.Equal(t, "alice", created["username"])
	_, hasPassword := created["password"]
	assert.False(t, hasPassword)

	// wrong password and unknown user produce the same generic failure
	resp, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid username or password", body["error"])

	resp, body = doJSON(t, c, http.MethodPost, env.srv.URL+"/login", map[string]string{
		"username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created["id"], body["id"])

	resp, body = doJSON(t, c, http.MethodGet, env.srv.URL+"/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created["id"], body["id"])
}

func TestSignupValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	signup(t, c, env.srv.URL, "alice", "alice@x.com")

	cases := []struct {
		name string
		req  map[string]string
	}{
		{"bad email", map[string]string{"username": "x", "email": "nope", "password": "secret1"}},
		{"duplicate username", map[string]string{"username": "alice", "email": "other@x.com", "password": "secret1"}},
		{"duplicate email", map[string]string{"username": "other", "email": "alice@x.com", "password": "secret1"}},
		{"short password", map[string]string{"username": "other", "email": "other@x.com", "password": "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/signup", tc.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)

	for _, path := range []string{"/me", "/users/suggested", "/notifications"} {
		resp, _ := doJSON(t, c, http.MethodGet, env.srv.URL+path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	signup(t, c, env.srv.URL, "alice", "alice@x.com")

	resp, _ := doJSON(t, c, http.MethodPost, env.srv.URL+"/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// the jar dropped the expired cookie, so the session is gone
	resp, _ = doJSON(t, c, http.MethodGet, env.srv.URL+"/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFollowToggleScenario(t *testing.T) {
	env := newTestEnv(t)
	alice := newClient(t)
	bob := newClient(t)

	aliceProfile := signup(t, alice, env.srv.URL, "alice", "alice@x.com")
	bobProfile := signup(t, bob, env.srv.URL, "bob", "bob@x.com")
	aliceID := aliceProfile["id"].(string)
	bobID := bobProfile["id"].(string)

	resp, body := doJSON(t, alice, http.MethodPost, env.srv.URL+"/users/follow/"+bobID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user followed successfully", body["message"])

	resp, body = doJSON(t, alice, http.MethodGet, env.srv.URL+"/users/profile/bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["followers"], aliceID)

	// bob sees exactly one follow notification
	resp, _ = doJSON(t, bob, http.MethodGet, env.srv.URL+"/notifications", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notifs, err := env.notifs.ListByRecipient(t.Context(), bobID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].Read) // listing marked it read

	// second call toggles back to unfollowed and adds no notification
	resp, body = doJSON(t, alice, http.MethodPost, env.srv.URL+"/users/follow/"+bobID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user unfollowed successfully", body["message"])

	resp, body = doJSON(t, alice, http.MethodGet, env.srv.URL+"/users/profile/bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body["followers"], aliceID)

	notifs, err = env.notifs.ListByRecipient(t.Context(), bobID)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func TestSelfFollowRejectedOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	profile := signup(t, c, env.srv.URL, "alice", "alice@x.com")

	resp, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/users/follow/"+profile["id"].(string), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestUpdateProfileOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	signup(t, c, env.srv.URL, "alice", "alice@x.com")

	resp, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/users/update", map[string]string{"bio": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", body["bio"])
	assert.Equal(t, "alice", body["username"])

	// password change with only one half of the pair is rejected
	resp, body = doJSON(t, c, http.MethodPost, env.srv.URL+"/users/update", map[string]string{"newPassword": "changed1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestSuggestedOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	signup(t, c, env.srv.URL, "actor", "actor@x.com")
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		signup(t, newClient(t), env.srv.URL, name, name+"@x.com")
	}

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/users/suggested", nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var suggestions []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&suggestions))
	assert.LessOrEqual(t, len(suggestions), 4)
	for _, s := range suggestions {
		assert.NotEqual(t, "actor", s["username"])
		_, hasPassword := s["password"]
		assert.False(t, hasPassword)
	}
}
