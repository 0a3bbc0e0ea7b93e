// Package middleware provides HTTP middleware for the relay server.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// HeaderRequestID is the header the correlation id is read from and echoed to.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns every request a correlation id: the caller-supplied
// X-Request-ID when present, otherwise a fresh UUID. The id is stored in
// the request context and echoed on the response so webhook deliveries can
// be traced across the vendor, the relay and the CRM.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the correlation id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
