package oauth

import (
	"context"
	"net/url"
	"strings"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

// NormalizeOrigin reduce una URL absoluta http(s) a su origin: scheme y host en
// minúsculas, sin puerto por defecto. ok=false si no es una URL absoluta http(s).
func NormalizeOrigin(raw string) (origin string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		host += ":" + port
	}
	return scheme + "://" + host, true
}

// ResolveAllowedOrigins arma el conjunto de origins aceptados para una app:
// siempre el portal, más el origin del redirect registrado si app es conocida.
func ResolveAllowedOrigins(frontendOrigin string, app *repository.Application) map[string]struct{} {
	set := make(map[string]struct{}, 2)
	if o, ok := NormalizeOrigin(frontendOrigin); ok {
		set[o] = struct{}{}
	}
	if app != nil {
		if o, ok := NormalizeOrigin(app.RedirectURI); ok {
			set[o] = struct{}{}
		}
	}
	return set
}

// OriginService resuelve origins contra el registro de aplicaciones.
type OriginService struct {
	Apps           repository.ApplicationRepository
	FrontendOrigin string
}

// OriginAllowed reporta si origin puede llamar a los endpoints OAuth de clientID.
// Fallas del lookup no agregan origins.
func (s *OriginService) OriginAllowed(ctx context.Context, clientID, origin string) bool {
	want, ok := NormalizeOrigin(origin)
	if !ok {
		return false
	}

	var app *repository.Application
	if clientID != "" && s.Apps != nil {
		found, err := s.Apps.GetByClientID(ctx, clientID)
		if err != nil {
			logger.From(ctx).Debug("origin lookup failed",
				logger.Layer("service"),
				logger.Op("oauth.origin"),
				logger.ClientID(clientID),
				logger.Err(err),
			)
		} else {
			app = found
		}
	}

	_, allowed := ResolveAllowedOrigins(s.FrontendOrigin, app)[want]
	return allowed
}
