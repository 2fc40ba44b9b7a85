package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
)

type userRepo struct{ pool *pgxpool.Pool }

const userColumns = `id::text, username, email, password_hash, created_at`

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id)
}

func (r *userRepo) getOne(ctx context.Context, query, arg string) (*repository.User, error) {
	var u repository.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user: %w", err)
	}

	grants, err := r.grants(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Access = grants
	return &u, nil
}

func (r *userRepo) grants(ctx context.Context, userID string) ([]repository.AccessGrant, error) {
	const query = `
		SELECT application_id::text, role, granted_at
		FROM user_app_access
		WHERE user_id::text = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pg: list grants: %w", err)
	}
	grants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.AccessGrant, error) {
		var g repository.AccessGrant
		err := row.Scan(&g.ApplicationID, &g.Role, &g.GrantedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("pg: scan grants: %w", err)
	}
	return grants, nil
}
