// Package redis implementa AuthCodeRepository sobre Redis.
//
// Cada code es una key JSON con TTL = vida del code + un margen. El vencimiento
// lo decide el canje con ExpiresAt; el TTL solo limpia keys abandonadas, por
// eso dura más que el code. Claim usa DEL: solo quien borra la key gana.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
)

const (
	// DefaultExpiredGrace es cuánto sobrevive la key a ExpiresAt.
	DefaultExpiredGrace = 15 * time.Minute

	// minTTL evita SET con TTL cero o negativo para codes ya vencidos.
	minTTL = time.Second
)

type AuthCodes struct {
	client redis.UniversalClient
	prefix string
	grace  time.Duration
	now    func() time.Time
}

var _ repository.AuthCodeRepository = (*AuthCodes)(nil)

// NewAuthCodes crea el store. grace <= 0 usa DefaultExpiredGrace.
func NewAuthCodes(client redis.UniversalClient, prefix string, grace time.Duration) *AuthCodes {
	if grace <= 0 {
		grace = DefaultExpiredGrace
	}
	return &AuthCodes{client: client, prefix: prefix, grace: grace, now: time.Now}
}

// ttl mide la vida desde CreatedAt (reloj de quien emitió el code) cuando está.
func (s *AuthCodes) ttl(c *repository.AuthorizationCode) time.Duration {
	from := c.CreatedAt
	if from.IsZero() {
		from = s.now()
	}
	return max(c.ExpiresAt.Sub(from), minTTL) + s.grace
}

type record struct {
	ClientID            string    `json:"client_id"`
	UserID              string    `json:"user_id"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	RedirectURL         string    `json:"redirect_url"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
}

func (s *AuthCodes) key(code string) string { return s.prefix + code }

func (s *AuthCodes) Create(ctx context.Context, c *repository.AuthorizationCode) error {
	b, err := json.Marshal(record{
		ClientID:            c.ClientID,
		UserID:              c.UserID,
		CodeChallenge:       c.CodeChallenge,
		CodeChallengeMethod: c.CodeChallengeMethod,
		RedirectURL:         c.RedirectURL,
		ExpiresAt:           c.ExpiresAt,
		CreatedAt:           c.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("redis: encode auth code: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(c.Code), b, s.ttl(c)).Result()
	if err != nil {
		return fmt.Errorf("redis: create auth code: %w", err)
	}
	if !ok {
		return repository.ErrConflict
	}
	return nil
}

func (s *AuthCodes) Get(ctx context.Context, code string) (*repository.AuthorizationCode, error) {
	b, err := s.client.Get(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get auth code: %w", err)
	}
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("redis: decode auth code: %w", err)
	}
	return &repository.AuthorizationCode{
		Code:                code,
		ClientID:            r.ClientID,
		UserID:              r.UserID,
		CodeChallenge:       r.CodeChallenge,
		CodeChallengeMethod: r.CodeChallengeMethod,
		RedirectURL:         r.RedirectURL,
		ExpiresAt:           r.ExpiresAt,
		CreatedAt:           r.CreatedAt,
	}, nil
}

func (s *AuthCodes) Claim(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(code)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: claim auth code: %w", err)
	}
	return n == 1, nil
}

// DeleteExpired no hace nada: Redis borra las keys al vencer el TTL.
func (s *AuthCodes) DeleteExpired(context.Context, time.Time) (int, error) { return 0, nil }

func (s *AuthCodes) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }
