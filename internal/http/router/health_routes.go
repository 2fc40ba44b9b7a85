package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/devportal/internal/http/middlewares"
)

// registerHealthRoutes registra /health (liveness) y /readyz (dependencias).
func registerHealthRoutes(r chi.Router, d Deps) {
	if d.Health == nil {
		return
	}
	c := d.Health.Health

	r.Group(func(r chi.Router) {
		use(r, mw.WithCORS([]string{d.FrontendOrigin}))
		r.Get("/health", c.Health)
		r.Get("/readyz", c.Readyz)
	})
}
