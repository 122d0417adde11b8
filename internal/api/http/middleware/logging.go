package middleware

import (
	"net/http"
	"time"

	"github.com/dtroode/farmgate-identity/internal/logger"
)

// Logging logs method, path, duration and status of each HTTP request.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Handle wraps next with request logging.
func (l *Logging) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"status", rec.status,
		}

		switch {
		case rec.status >= http.StatusInternalServerError:
			l.logger.Error("HTTP request failed", args...)
		case rec.status >= http.StatusBadRequest:
			l.logger.Info("HTTP request rejected", args...)
		default:
			l.logger.Info("HTTP request completed", args...)
		}
	})
}
