// Package memory implementa los puertos de repositorio en proceso.
//
// El registro (aplicaciones + usuarios) se siembra desde un YAML; los
// authorization codes viven en un map protegido por mutex.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
)

// Registry implementa ApplicationRepository y UserRepository.
type Registry struct {
	mu      sync.RWMutex
	apps    map[string]*repository.Application // por client id
	users   map[string]*repository.User        // por id
	byEmail map[string]string                  // email normalizado -> id
}

var (
	_ repository.ApplicationRepository = (*Registry)(nil)
	_ repository.UserRepository        = (*Registry)(nil)
)

func NewRegistry() *Registry {
	return &Registry{
		apps:    make(map[string]*repository.Application),
		users:   make(map[string]*repository.User),
		byEmail: make(map[string]string),
	}
}

// NormalizeEmail aplica trim + lowercase.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PutApplication agrega o reemplaza una aplicación.
func (r *Registry) PutApplication(app repository.Application) error {
	if app.ClientID == "" {
		return fmt.Errorf("memory: application %q without client id", app.Name)
	}
	if app.Status == "" {
		app.Status = repository.ApplicationStatusActive
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a := app
	a.Roles = append([]string(nil), app.Roles...)
	r.apps[app.ClientID] = &a
	return nil
}

// PutUser agrega o reemplaza un usuario. El email se normaliza.
func (r *Registry) PutUser(u repository.User) error {
	if u.ID == "" {
		return fmt.Errorf("memory: user %q without id", u.Email)
	}
	u.Email = NormalizeEmail(u.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byEmail[u.Email]; ok && prev != u.ID {
		return fmt.Errorf("memory: email %q: %w", u.Email, repository.ErrConflict)
	}
	if old, ok := r.users[u.ID]; ok && old.Email != u.Email {
		delete(r.byEmail, old.Email)
	}
	nu := u
	nu.Access = append([]repository.AccessGrant(nil), u.Access...)
	r.users[u.ID] = &nu
	r.byEmail[u.Email] = u.ID
	return nil
}

// SetGrants reemplaza los grants de un usuario (usado para simular revocaciones).
func (r *Registry) SetGrants(userID string, grants []repository.AccessGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Access = append([]repository.AccessGrant(nil), grants...)
	return nil
}

func (r *Registry) GetByClientID(_ context.Context, clientID string) (*repository.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	cp.Roles = append([]string(nil), a.Roles...)
	return &cp, nil
}

func (r *Registry) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(r.users[id]), nil
}

func (r *Registry) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

// Ping implementa el health check del registro.
func (r *Registry) Ping(context.Context) error { return nil }

func copyUser(u *repository.User) *repository.User {
	cp := *u
	cp.Access = append([]repository.AccessGrant(nil), u.Access...)
	return &cp
}
