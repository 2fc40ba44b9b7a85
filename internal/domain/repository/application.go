package repository

import (
	"context"
	"time"
)

const (
	ApplicationStatusActive  = "active"
	ApplicationStatusPending = "pending"
)

// Application es una aplicación de terceros registrada en el portal.
// El secret nunca sale del registro: el núcleo no lo necesita.
type Application struct {
	ID          string
	ClientID    string // identificador público, único e inmutable
	Name        string
	RedirectURI string // URL absoluta registrada
	Roles       []string
	Status      string
	CreatedAt   time.Time
}

// HasRole reporta si role es uno de los roles válidos de la aplicación.
func (a *Application) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ApplicationRepository es el puerto de lectura del registro de aplicaciones.
type ApplicationRepository interface {
	// GetByClientID busca una aplicación por su client id público.
	// Retorna ErrNotFound si no existe.
	GetByClientID(ctx context.Context, clientID string) (*Application, error)
}
