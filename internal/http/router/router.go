// Package router arma el árbol de rutas chi del servicio.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/devportal/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/devportal/internal/http/controllers/oauth"
	httperrors "github.com/dropDatabas3/devportal/internal/http/errors"
	mw "github.com/dropDatabas3/devportal/internal/http/middlewares"
)

// Deps contiene las dependencias del router.
type Deps struct {
	APIPrefix      string // ej: "/api"; "" monta en la raíz
	FrontendOrigin string

	OAuth  *oauthctrl.Controllers
	Health *healthctrl.Controllers

	OriginChecker mw.OriginChecker
	RateLimit     mw.Middleware // nil deshabilita
	Metrics       http.Handler  // nil => sin /metrics
}

// New construye el handler raíz.
//
//	/metrics                         (raíz, sin rate limit)
//	{prefix}/health, {prefix}/readyz (CORS del portal)
//	{prefix}/oauth/*                 (origin gate + no-store)
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	use(r,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
	)

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	prefix := "/" + strings.Trim(d.APIPrefix, "/")
	mount := func(r chi.Router) {
		use(r, d.RateLimit)
		registerHealthRoutes(r, d)
		registerOAuthRoutes(r, d)
	}
	if prefix == "/" {
		r.Group(mount)
	} else {
		r.Route(prefix, mount)
	}
	return r
}

// use registra middlewares ignorando los nil (features deshabilitadas).
func use(r chi.Router, mws ...mw.Middleware) {
	for _, m := range mws {
		if m != nil {
			r.Use(m.Func())
		}
	}
}
