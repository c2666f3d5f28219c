package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// userIDCarrier is seeded into the context by Logging before dispatch.
// RequireAuth runs deeper in the chain on a derived request whose
// context never propagates back out, so it writes the authenticated
// user id into the carrier instead.
type userIDCarrier struct {
	id string
}

const userIDCarrierKey contextKey = "user_id_carrier"

// Logging logs every request with method, path, status, duration and
// the authenticated user id when the auth middleware ran deeper in
// the chain.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		carrier := &userIDCarrier{}
		r = r.WithContext(context.WithValue(r.Context(), userIDCarrierKey, carrier))

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Milliseconds()
		userID := carrier.id // empty if the request never authenticated
		if rec.status >= http.StatusInternalServerError {
			slog.Error("Request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		} else if rec.status >= http.StatusBadRequest {
			slog.Warn("Request rejected",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		} else {
			slog.Info("Request ok",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		}
	})
}
