package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"bitrix-lead-relay/internal/utils"
)

// RequestLogger emits one structured log line per completed request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		utils.GetLogger().Info("request completed",
			utils.String("method", r.Method),
			utils.String("path", r.URL.Path),
			utils.Int("status", ww.Status()),
			utils.Int("bytes", ww.BytesWritten()),
			utils.Duration("duration", time.Since(start)),
			utils.String("requestId", GetRequestID(r.Context())))
	})
}
