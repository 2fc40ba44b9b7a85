// Package server arma el handler HTTP con todas sus dependencias y maneja el
// ciclo de vida del http.Server.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/devportal/internal/config"
	healthctrl "github.com/dropDatabas3/devportal/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/devportal/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/devportal/internal/http/middlewares"
	"github.com/dropDatabas3/devportal/internal/http/router"
	healthsvc "github.com/dropDatabas3/devportal/internal/http/services/health"
	oauthsvc "github.com/dropDatabas3/devportal/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/devportal/internal/jwt"
	"github.com/dropDatabas3/devportal/internal/metrics"
	"github.com/dropDatabas3/devportal/internal/rate"
	"github.com/dropDatabas3/devportal/internal/store"
)

const rateLimitPrefix = "devportal:rl:"

// Options permite inyectar dependencias en tests.
type Options struct {
	Registry prometheus.Registerer // nil => registry nuevo
	Now      func() time.Time      // nil => time.Now
}

// BuildHandler construye el handler raíz a partir de la config y los stores.
func BuildHandler(cfg *config.Config, st *store.Stores, opts Options) (http.Handler, error) {
	issuer, err := jwtx.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), cfg.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("server: jwt issuer: %w", err)
	}
	if opts.Now != nil {
		issuer.WithClock(opts.Now)
	}

	frontend := cfg.FrontendURL()
	oauth := oauthsvc.NewServices(oauthsvc.Deps{
		Apps:           st.Applications,
		Users:          st.Users,
		Codes:          st.AuthCodes,
		Issuer:         issuer,
		FrontendOrigin: frontend,
		CodeTTL:        cfg.Codes.TTL,
		Now:            opts.Now,
	})
	health := healthsvc.NewServices(healthsvc.Deps{
		Version: cfg.App.Version,
		Checks:  st.Checks(),
	})

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	var pool *pgxpool.Pool
	if st.PG != nil {
		pool = st.PG.Pool()
	}
	metricsHandler, err := metrics.Register(reg, pool)
	if err != nil {
		return nil, fmt.Errorf("server: metrics: %w", err)
	}

	rl, err := buildRateLimit(cfg, st)
	if err != nil {
		return nil, err
	}

	return router.New(router.Deps{
		APIPrefix:      cfg.Server.APIPrefix,
		FrontendOrigin: frontend,
		OAuth:          oauthctrl.NewControllers(oauth),
		Health:         healthctrl.NewControllers(health),
		OriginChecker:  oauth.Origins,
		RateLimit:      rl,
		Metrics:        metricsHandler,
	}), nil
}

func buildRateLimit(cfg *config.Config, st *store.Stores) (mw.Middleware, error) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}

	var lim rate.Limiter
	switch cfg.Rate.Kind {
	case config.DriverRedis:
		if st.Redis == nil {
			return nil, fmt.Errorf("server: redis rate limiter without redis client")
		}
		lim = rate.NewRedisLimiter(st.Redis, rateLimitPrefix, cfg.Rate.MaxRequests, cfg.Rate.Window)
	default:
		lim = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window)
	}

	prefix := "/" + strings.Trim(cfg.Server.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	return mw.WithRateLimit(mw.RateLimitConfig{
		Limiter:    lim,
		TrustProxy: cfg.Server.TrustProxy,
		Max:        cfg.Rate.MaxRequests,
		Whitelist:  []string{prefix + "/health", prefix + "/readyz"},
	}), nil
}
