package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/devportal/internal/audit"
	"github.com/dropDatabas3/devportal/internal/domain/repository"
	jwtx "github.com/dropDatabas3/devportal/internal/jwt"
	"github.com/dropDatabas3/devportal/internal/metrics"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
	"github.com/dropDatabas3/devportal/internal/security/pkce"
)

// ExchangeRequest son los parámetros del canje code -> token.
type ExchangeRequest struct {
	Code         string
	CodeVerifier string
	ClientID     string
}

// TokenUser es la vista pública del usuario devuelta junto al token.
type TokenUser struct {
	ID       string
	Username string
	Email    string
}

// TokenResult es un access token emitido.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64 // segundos, ventana configurada
	ExpiresAt   time.Time
	User        TokenUser
	Role        string
}

// TokenService canjea authorization codes por access tokens.
type TokenService interface {
	Exchange(ctx context.Context, req ExchangeRequest) (*TokenResult, error)
}

type TokenDeps struct {
	Apps   repository.ApplicationRepository
	Users  repository.UserRepository
	Codes  repository.AuthCodeRepository
	Issuer *jwtx.Issuer
	Now    func() time.Time
}

type tokenService struct {
	apps   repository.ApplicationRepository
	users  repository.UserRepository
	codes  repository.AuthCodeRepository
	issuer *jwtx.Issuer
	now    func() time.Time
}

func NewTokenService(d TokenDeps) TokenService {
	s := &tokenService{
		apps:   d.Apps,
		users:  d.Users,
		codes:  d.Codes,
		issuer: d.Issuer,
		now:    d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *tokenService) Exchange(ctx context.Context, req ExchangeRequest) (*TokenResult, error) {
	res, result, err := s.exchange(ctx, req)
	metrics.RecordExchange(result)
	return res, err
}

// exchange aplica los chequeos en orden. Solo expiración y canje exitoso
// eliminan el code; mismatch de cliente o verifier lo dejan intacto.
func (s *tokenService) exchange(ctx context.Context, req ExchangeRequest) (*TokenResult, string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("oauth.token"),
		logger.ClientID(req.ClientID),
	)

	if req.Code == "" || req.CodeVerifier == "" || req.ClientID == "" {
		return nil, metrics.ExchangeInvalidRequest, ErrInvalidRequest
	}
	log = log.With(logger.CodeRef(req.Code))

	rec, err := s.codes.Get(ctx, req.Code)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Info("exchange rejected", logger.String("reason", "invalid_grant"))
			return nil, metrics.ExchangeInvalidGrant, ErrInvalidGrant
		}
		return nil, metrics.ExchangeError, fmt.Errorf("get code: %w", err)
	}

	now := s.now()
	if rec.Expired(now) {
		if _, err := s.codes.Claim(ctx, rec.Code); err != nil {
			log.Warn("delete expired code failed", logger.Err(err))
		}
		log.Info("exchange rejected", logger.String("reason", "expired_grant"))
		return nil, metrics.ExchangeExpired, ErrExpiredGrant
	}

	if rec.ClientID != req.ClientID {
		log.Warn("exchange rejected", logger.String("reason", "client_mismatch"))
		return nil, metrics.ExchangeClientMismatch, ErrClientMismatch
	}

	if !pkce.Verify(rec.CodeChallenge, req.CodeVerifier) {
		log.Warn("exchange rejected", logger.String("reason", "invalid_verifier"))
		return nil, metrics.ExchangeInvalidVerifier, ErrInvalidVerifier
	}

	claimed, err := s.codes.Claim(ctx, rec.Code)
	if err != nil {
		return nil, metrics.ExchangeError, fmt.Errorf("claim code: %w", err)
	}
	if !claimed {
		log.Warn("exchange rejected", logger.String("reason", "already_claimed"))
		audit.Log(ctx, audit.EventCodeReplay, logger.ClientID(rec.ClientID), logger.CodeRef(rec.Code))
		return nil, metrics.ExchangeInvalidGrant, ErrInvalidGrant
	}

	// Grants actuales: una revocación entre authorize y token se respeta.
	app, user, grant, err := s.resolveGrant(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			log.Info("exchange rejected", logger.UserID(rec.UserID), logger.String("reason", "access_denied"))
			return nil, metrics.ExchangeAccessDenied, ErrAccessDenied
		}
		return nil, metrics.ExchangeError, err
	}

	signed, exp, err := s.issuer.IssueAccess(jwtx.AccessClaims{
		UserID:        user.ID,
		Username:      user.Username,
		Email:         user.Email,
		ApplicationID: app.ID,
		ClientID:      app.ClientID,
		Role:          grant.Role,
	})
	if err != nil {
		return nil, metrics.ExchangeError, fmt.Errorf("issue access token: %w", err)
	}

	log.Info("access token issued", logger.UserID(user.ID), logger.Role(grant.Role))
	audit.Log(ctx, audit.EventTokenIssued, logger.ClientID(app.ClientID), logger.UserID(user.ID), logger.Role(grant.Role))
	return &TokenResult{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.issuer.AccessTTL / time.Second),
		ExpiresAt:   exp,
		User: TokenUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
		Role: grant.Role,
	}, metrics.ExchangeOK, nil
}

func (s *tokenService) resolveGrant(ctx context.Context, rec *repository.AuthorizationCode) (*repository.Application, *repository.User, repository.AccessGrant, error) {
	app, err := s.apps.GetByClientID(ctx, rec.ClientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, repository.AccessGrant{}, ErrAccessDenied
		}
		return nil, nil, repository.AccessGrant{}, fmt.Errorf("lookup application: %w", err)
	}
	user, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, repository.AccessGrant{}, ErrAccessDenied
		}
		return nil, nil, repository.AccessGrant{}, fmt.Errorf("lookup user: %w", err)
	}
	grant, ok := user.GrantFor(app.ID)
	if !ok {
		return nil, nil, repository.AccessGrant{}, ErrAccessDenied
	}
	return app, user, grant, nil
}
