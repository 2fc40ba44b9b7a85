package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/devportal/internal/http/middlewares"
)

// registerOAuthRoutes registra los endpoints públicos /oauth/*.
// El origin gate corre antes del ruteo por método para contestar pre-flights.
func registerOAuthRoutes(r chi.Router, d Deps) {
	if d.OAuth == nil {
		return
	}
	c := d.OAuth

	r.Route("/oauth", func(r chi.Router) {
		if d.OriginChecker != nil {
			use(r, mw.WithOriginGate(d.OriginChecker))
		}
		use(r, mw.WithNoStore())

		r.Get("/validate", c.Validate.Validate)
		r.Post("/authorize", c.Authorize.Authorize)
		r.Post("/authorize-with-token", c.Authorize.AuthorizeWithToken)
		r.Post("/token", c.Token.Token)
	})
}
