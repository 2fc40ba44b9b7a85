package repository

import (
	"context"
	"time"
)

// AccessGrant indica que un usuario puede actuar con Role dentro de una aplicación.
// Un usuario tiene como máximo un grant por aplicación.
type AccessGrant struct {
	ApplicationID string
	Role          string
	GrantedAt     time.Time
}

// User es un usuario del portal con sus grants embebidos.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Access       []AccessGrant
	CreatedAt    time.Time
}

// GrantFor retorna el grant del usuario para la aplicación, si existe.
func (u *User) GrantFor(applicationID string) (AccessGrant, bool) {
	for _, g := range u.Access {
		if g.ApplicationID == applicationID {
			return g, true
		}
	}
	return AccessGrant{}, false
}

// UserRepository es el puerto de lectura de usuarios y sus grants.
type UserRepository interface {
	// GetByEmail busca por email normalizado (trim + lowercase).
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retorna el usuario con sus grants actuales.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)
}
