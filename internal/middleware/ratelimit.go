package middleware

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"bitrix-lead-relay/internal/models"
)

// RateLimit caps inbound throughput across all callers. Call-center
// vendors burst deliveries when a campaign closes; shedding the excess
// here keeps the CRM's own rate limits out of the picture.
func RateLimit(rps, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(models.RelayResponse{
					Success: false,
					Error:   "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
