package repository

import (
	"context"
	"time"
)

// AuthorizationCode es un grant de autorización pendiente de canje.
type AuthorizationCode struct {
	Code                string
	ClientID            string
	UserID              string
	CodeChallenge       string
	CodeChallengeMethod string
	RedirectURL         string
	ExpiresAt           time.Time
	CreatedAt           time.Time
}

// Expired reporta si el code ya no puede canjearse en el instante now.
// Es el único chequeo canónico de expiración; TTLs y sweeps son limpieza.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AuthCodeRepository persiste authorization codes.
type AuthCodeRepository interface {
	// Create persiste un code nuevo. Retorna ErrConflict si el code ya existe.
	Create(ctx context.Context, code *AuthorizationCode) error

	// Get lee un code sin consumirlo. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, code string) (*AuthorizationCode, error)

	// Claim elimina el code de forma atómica y reporta si esta llamada lo eliminó.
	// De dos llamadas concurrentes sobre el mismo code, como máximo una obtiene true.
	Claim(ctx context.Context, code string) (bool, error)

	// DeleteExpired elimina los codes con ExpiresAt anterior a now y retorna cuántos.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// Ping verifica que el backend responde.
	Ping(ctx context.Context) error
}
