package oauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/devportal/internal/audit"
	"github.com/dropDatabas3/devportal/internal/domain/repository"
	jwtx "github.com/dropDatabas3/devportal/internal/jwt"
	"github.com/dropDatabas3/devportal/internal/metrics"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
	"github.com/dropDatabas3/devportal/internal/security/password"
	"github.com/dropDatabas3/devportal/internal/security/pkce"
	tokens "github.com/dropDatabas3/devportal/internal/security/token"
)

const (
	// DefaultCodeTTL es la vida de un authorization code.
	DefaultCodeTTL = 10 * time.Minute

	codeBytes = 32
)

// AuthorizeRequest autentica con email y password.
type AuthorizeRequest struct {
	ClientParams
	Email    string
	Password string
}

// SessionAuthorizeRequest autentica con un JWT de sesión del portal.
type SessionAuthorizeRequest struct {
	ClientParams
	SessionToken string
}

// AuthorizeService emite authorization codes. Nunca emite tokens.
type AuthorizeService interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (string, error)
	AuthorizeWithSession(ctx context.Context, req SessionAuthorizeRequest) (string, error)
}

type AuthorizeDeps struct {
	Apps    repository.ApplicationRepository
	Users   repository.UserRepository
	Codes   repository.AuthCodeRepository
	Issuer  *jwtx.Issuer // valida sesiones del portal
	CodeTTL time.Duration
	Now     func() time.Time
}

type authorizeService struct {
	apps    repository.ApplicationRepository
	users   repository.UserRepository
	codes   repository.AuthCodeRepository
	issuer  *jwtx.Issuer
	codeTTL time.Duration
	now     func() time.Time
}

func NewAuthorizeService(d AuthorizeDeps) AuthorizeService {
	s := &authorizeService{
		apps:    d.Apps,
		users:   d.Users,
		codes:   d.Codes,
		issuer:  d.Issuer,
		codeTTL: d.CodeTTL,
		now:     d.Now,
	}
	if s.codeTTL <= 0 {
		s.codeTTL = DefaultCodeTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *authorizeService) Authorize(ctx context.Context, req AuthorizeRequest) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize"))

	if !req.complete() || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return "", ErrInvalidRequest
	}
	app, err := checkClient(ctx, s.apps, req.ClientParams)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !repository.IsNotFound(err) {
			return "", fmt.Errorf("lookup user: %w", err)
		}
		password.DummyCompare(req.Password)
		log.Info("authorize rejected", logger.ClientID(req.ClientID), logger.String("reason", "invalid_credentials"))
		audit.Log(ctx, audit.EventLoginFailed, logger.ClientID(req.ClientID), logger.Email(req.Email))
		return "", ErrInvalidCredentials
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		log.Info("authorize rejected", logger.ClientID(req.ClientID), logger.String("reason", "invalid_credentials"))
		audit.Log(ctx, audit.EventLoginFailed, logger.ClientID(req.ClientID), logger.Email(req.Email))
		return "", ErrInvalidCredentials
	}

	return s.issueCode(ctx, log, app, user, req.ClientParams)
}

func (s *authorizeService) AuthorizeWithSession(ctx context.Context, req SessionAuthorizeRequest) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize_with_token"))

	if !req.complete() {
		return "", ErrInvalidRequest
	}
	app, err := checkClient(ctx, s.apps, req.ClientParams)
	if err != nil {
		return "", err
	}

	if req.SessionToken == "" || s.issuer == nil {
		return "", ErrInvalidCredentials
	}
	userID, err := s.issuer.ParsePortalSession(req.SessionToken)
	if err != nil {
		log.Info("invalid portal session", logger.ClientID(req.ClientID), logger.Err(err))
		return "", ErrInvalidCredentials
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	return s.issueCode(ctx, log, app, user, req.ClientParams)
}

// issueCode verifica el grant del usuario y persiste un code nuevo.
func (s *authorizeService) issueCode(ctx context.Context, log *logger.Logger, app *repository.Application, user *repository.User, p ClientParams) (string, error) {
	if _, ok := user.GrantFor(app.ID); !ok {
		log.Info("authorize rejected",
			logger.ClientID(app.ClientID),
			logger.UserID(user.ID),
			logger.String("reason", "access_denied"),
		)
		audit.Log(ctx, audit.EventAccessDenied, logger.ClientID(app.ClientID), logger.UserID(user.ID))
		return "", ErrAccessDenied
	}

	now := s.now().UTC()
	for attempt := 0; attempt < 2; attempt++ {
		code, err := tokens.GenerateHexToken(codeBytes)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		err = s.codes.Create(ctx, &repository.AuthorizationCode{
			Code:                code,
			ClientID:            app.ClientID,
			UserID:              user.ID,
			CodeChallenge:       p.CodeChallenge,
			CodeChallengeMethod: pkce.MethodS256,
			RedirectURL:         p.RedirectURL,
			ExpiresAt:           now.Add(s.codeTTL),
			CreatedAt:           now,
		})
		if repository.IsConflict(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("store code: %w", err)
		}

		metrics.RecordCodeIssued(app.ClientID)
		log.Info("authorization code issued",
			logger.ClientID(app.ClientID),
			logger.UserID(user.ID),
			logger.CodeRef(code),
		)
		audit.Log(ctx, audit.EventCodeIssued, logger.ClientID(app.ClientID), logger.UserID(user.ID), logger.CodeRef(code))
		return code, nil
	}
	return "", fmt.Errorf("store code: %w", repository.ErrConflict)
}
