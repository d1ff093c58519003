package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// sensitiveFields are form/query keys that must never reach the logs.
var sensitiveFields = []string{
	"password",
	"password_hash",
	"new_password",
	"csrf_token",
	"token",
	"secret",
}

// LoggingMiddleware logs one line per request with the sensitive form
// fields masked. Bodies are not captured: uploads are multi-megabyte
// multipart payloads.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			statusCode := ww.statusCode
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			logLevel := slog.LevelInfo
			if statusCode >= 500 {
				logLevel = slog.LevelError
			} else if statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", filterSensitiveQuery(r.URL.Query()),
				"status_code", statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}

func filterSensitiveQuery(values url.Values) string {
	filtered := url.Values{}
	for key, vals := range values {
		if isSensitive(key) {
			filtered.Set(key, "[FILTERED]")
			continue
		}
		filtered[key] = vals
	}
	return filtered.Encode()
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}
