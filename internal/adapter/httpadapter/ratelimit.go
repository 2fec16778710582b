package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/couchcryptid/bike-rental-report/internal/observability"
	"golang.org/x/time/rate"
)

// rateLimiter sheds API traffic above a global token-bucket rate.
type rateLimiter struct {
	limiter *rate.Limiter
	metrics *observability.Metrics
	logger  *slog.Logger
}

func newRateLimiter(rps float64, burst int, metrics *observability.Metrics, logger *slog.Logger) *rateLimiter {
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		metrics: metrics,
		logger:  logger,
	}
}

func (rl *rateLimiter) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter.Allow() {
			rl.metrics.Requests.WithLabelValues("api", "rate_limited").Inc()
			rl.logger.WarnContext(r.Context(), "rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
