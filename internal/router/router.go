package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler-api/internal/auth"
	"github.com/warblerhq/warbler-api/internal/notification"
	"github.com/warblerhq/warbler-api/internal/user"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs each request at debug level with the provided
// sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// New mounts all HTTP handlers on a standard-library mux. Protected routes
// are wrapped with the session gate.
func New(logger *zap.SugaredLogger, authSvc *auth.Service, authHandler *auth.Handler, userHandler *user.Handler, notifHandler *notification.Handler) http.Handler {
	mux := http.NewServeMux()
	gate := authSvc.RequireSession

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.Handle("GET /me", gate(http.HandlerFunc(authHandler.Me)))

	mux.Handle("GET /users/profile/{username}", gate(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("POST /users/follow/{id}", gate(http.HandlerFunc(userHandler.Follow)))
	mux.Handle("GET /users/suggested", gate(http.HandlerFunc(userHandler.Suggested)))
	mux.Handle("POST /users/update", gate(http.HandlerFunc(userHandler.Update)))

	mux.Handle("GET /notifications", gate(http.HandlerFunc(notifHandler.List)))
	mux.Handle("DELETE /notifications", gate(http.HandlerFunc(notifHandler.Clear)))

	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
}
