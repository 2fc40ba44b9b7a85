package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dropDatabas3/devportal/internal/http/helpers"
	httperrors "github.com/dropDatabas3/devportal/internal/http/errors"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
	"github.com/dropDatabas3/devportal/internal/rate"
)

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter    rate.Limiter
	TrustProxy bool
	Max        int
	Whitelist  []string // paths excluidos (ej: /health)
}

// WithRateLimit limita por IP de cliente. Errores del limiter dejan pasar el request.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return nil
	}
	whitelist := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		whitelist[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelist[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ip := helpers.ClientIP(r, cfg.TrustProxy)
			res, err := cfg.Limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if cfg.Max > 0 {
				h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			}
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.Reset > 0 {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.Reset).Unix(), 10))
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					h.Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				logger.From(r.Context()).Warn("rate limited", logger.ClientIP(ip))
				httperrors.WriteError(w, httperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
