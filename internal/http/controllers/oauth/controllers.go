package oauth

import svc "github.com/dropDatabas3/devportal/internal/http/services/oauth"

// Controllers agrupa todos los controllers del dominio OAuth.
type Controllers struct {
	Validate  *ValidateController
	Authorize *AuthorizeController
	Token     *TokenController
}

// NewControllers crea el agregador de controllers OAuth.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Validate:  NewValidateController(s.Validate),
		Authorize: NewAuthorizeController(s.Authorize),
		Token:     NewTokenController(s.Token),
	}
}
