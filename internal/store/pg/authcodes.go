package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
)

const pgUniqueViolation = "23505"

type authCodeRepo struct{ pool *pgxpool.Pool }

func (r *authCodeRepo) Create(ctx context.Context, c *repository.AuthorizationCode) error {
	const query = `
		INSERT INTO authorization_codes
			(code, client_id, user_id, code_challenge, code_challenge_method, redirect_url, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, query,
		c.Code, c.ClientID, c.UserID, c.CodeChallenge, c.CodeChallengeMethod, c.RedirectURL, c.ExpiresAt, createdAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("pg: create auth code: %w", err)
	}
	return nil
}

func (r *authCodeRepo) Get(ctx context.Context, code string) (*repository.AuthorizationCode, error) {
	const query = `
		SELECT code, client_id, user_id, code_challenge, code_challenge_method, redirect_url, expires_at, created_at
		FROM authorization_codes
		WHERE code = $1
	`
	var c repository.AuthorizationCode
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.Code, &c.ClientID, &c.UserID, &c.CodeChallenge, &c.CodeChallengeMethod, &c.RedirectURL, &c.ExpiresAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get auth code: %w", err)
	}
	return &c, nil
}

// Claim es un DELETE condicional: solo la llamada que afecta la fila gana.
func (r *authCodeRepo) Claim(ctx context.Context, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authorization_codes WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("pg: claim auth code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *authCodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authorization_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("pg: delete expired auth codes: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *authCodeRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }
