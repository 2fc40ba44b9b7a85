// Package oauth contiene la lógica del flujo authorization code + PKCE:
// validación del pedido, emisión de codes, canje por token y resolución de
// origins para CORS.
package oauth

import (
	"time"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	jwtx "github.com/dropDatabas3/devportal/internal/jwt"
)

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	Apps           repository.ApplicationRepository
	Users          repository.UserRepository
	Codes          repository.AuthCodeRepository
	Issuer         *jwtx.Issuer
	FrontendOrigin string
	CodeTTL        time.Duration
	Now            func() time.Time // nil => time.Now
}

// Services agrupa todos los services del dominio OAuth.
type Services struct {
	Validate  ValidateService
	Authorize AuthorizeService
	Token     TokenService
	Origins   *OriginService
}

// NewServices crea el agregador de services OAuth.
func NewServices(d Deps) Services {
	return Services{
		Validate: NewValidateService(ValidateDeps{
			Apps: d.Apps,
		}),
		Authorize: NewAuthorizeService(AuthorizeDeps{
			Apps:    d.Apps,
			Users:   d.Users,
			Codes:   d.Codes,
			Issuer:  d.Issuer,
			CodeTTL: d.CodeTTL,
			Now:     d.Now,
		}),
		Token: NewTokenService(TokenDeps{
			Apps:   d.Apps,
			Users:  d.Users,
			Codes:  d.Codes,
			Issuer: d.Issuer,
			Now:    d.Now,
		}),
		Origins: &OriginService{
			Apps:           d.Apps,
			FrontendOrigin: d.FrontendOrigin,
		},
	}
}
