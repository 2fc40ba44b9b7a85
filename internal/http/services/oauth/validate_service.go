package oauth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
	"github.com/dropDatabas3/devportal/internal/security/pkce"
)

// ClientParams son los parámetros de la app cliente comunes a validate y authorize.
type ClientParams struct {
	ClientID            string
	RedirectURL         string
	CodeChallenge       string
	CodeChallengeMethod string
}

func (p ClientParams) complete() bool {
	return p.ClientID != "" && p.RedirectURL != "" && p.CodeChallenge != "" && p.CodeChallengeMethod != ""
}

// ValidateService comprueba un pedido de autorización antes de mostrar el login.
type ValidateService interface {
	// Validate retorna la aplicación si el pedido es aceptable. Sin efectos.
	Validate(ctx context.Context, p ClientParams) (*repository.Application, error)
}

type ValidateDeps struct {
	Apps repository.ApplicationRepository
}

type validateService struct {
	apps repository.ApplicationRepository
}

func NewValidateService(d ValidateDeps) ValidateService {
	return &validateService{apps: d.Apps}
}

func (s *validateService) Validate(ctx context.Context, p ClientParams) (*repository.Application, error) {
	if !p.complete() {
		return nil, ErrInvalidRequest
	}
	return checkClient(ctx, s.apps, p)
}

// checkClient aplica, en orden, método PKCE, client id y redirect exacto.
// Asume que p.complete() ya fue verificado.
func checkClient(ctx context.Context, apps repository.ApplicationRepository, p ClientParams) (*repository.Application, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.validate"))

	if !pkce.SupportedMethod(p.CodeChallengeMethod) {
		return nil, ErrUnsupportedChallengeMethod
	}

	app, err := apps.GetByClientID(ctx, p.ClientID)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("unknown client", logger.ClientID(p.ClientID))
			return nil, ErrUnknownClient
		}
		return nil, fmt.Errorf("lookup application: %w", err)
	}

	// Comparación byte a byte, sin normalizar.
	if app.RedirectURI != p.RedirectURL {
		log.Debug("redirect mismatch", logger.ClientID(p.ClientID))
		return nil, ErrRedirectMismatch
	}
	return app, nil
}
