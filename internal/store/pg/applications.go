package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
)

type applicationRepo struct{ pool *pgxpool.Pool }

func (r *applicationRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Application, error) {
	const query = `
		SELECT id::text, client_id, name, redirect_uri, roles, status, created_at
		FROM applications
		WHERE client_id = $1
	`
	var a repository.Application
	err := r.pool.QueryRow(ctx, query, clientID).Scan(
		&a.ID, &a.ClientID, &a.Name, &a.RedirectURI, &a.Roles, &a.Status, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get application by client id: %w", err)
	}
	return &a, nil
}
