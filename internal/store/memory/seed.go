package memory

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	"github.com/dropDatabas3/devportal/internal/security/password"
	"github.com/dropDatabas3/devportal/internal/validation"
)

// SeedFile es el formato YAML del registro en memoria.
type SeedFile struct {
	Applications []SeedApplication `yaml:"applications"`
	Users        []SeedUser        `yaml:"users"`
}

type SeedApplication struct {
	ID          string   `yaml:"id"`
	ClientID    string   `yaml:"client_id"`
	Name        string   `yaml:"name"`
	RedirectURI string   `yaml:"redirect_uri"`
	Roles       []string `yaml:"roles"`
	Status      string   `yaml:"status"`
}

type SeedUser struct {
	ID           string       `yaml:"id"`
	Username     string       `yaml:"username"`
	Email        string       `yaml:"email"`
	Password     string       `yaml:"password"`
	PasswordHash string       `yaml:"password_hash"`
	Access       []SeedAccess `yaml:"access"`
}

type SeedAccess struct {
	ClientID string `yaml:"client_id"`
	Role     string `yaml:"role"`
}

// LoadSeedFile lee y aplica un seed YAML sobre un registro nuevo.
func LoadSeedFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memory: read seed: %w", err)
	}
	var sf SeedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("memory: parse seed %s: %w", path, err)
	}
	reg := NewRegistry()
	if err := reg.Seed(sf); err != nil {
		return nil, err
	}
	return reg, nil
}

// Seed carga aplicaciones y usuarios. Passwords en claro se hashean con bcrypt.
// Los grants referencian aplicaciones por client id y deben usar un rol de la app.
func (r *Registry) Seed(sf SeedFile) error {
	now := time.Now().UTC()
	apps := make(map[string]SeedApplication, len(sf.Applications))
	appIDs := make(map[string]string, len(sf.Applications))

	for _, sa := range sf.Applications {
		if !validation.ValidClientID(sa.ClientID) {
			return fmt.Errorf("memory: application %q: invalid client id %q", sa.Name, sa.ClientID)
		}
		for _, role := range sa.Roles {
			if !validation.ValidRoleName(role) {
				return fmt.Errorf("memory: application %q: invalid role %q", sa.Name, role)
			}
		}
		id := sa.ID
		if id == "" {
			id = uuid.NewString()
		}
		if err := r.PutApplication(repository.Application{
			ID:          id,
			ClientID:    sa.ClientID,
			Name:        sa.Name,
			RedirectURI: sa.RedirectURI,
			Roles:       sa.Roles,
			Status:      sa.Status,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		appIDs[sa.ClientID] = id
		apps[sa.ClientID] = sa
	}

	for _, su := range sf.Users {
		hash := su.PasswordHash
		if hash == "" {
			h, err := password.Hash(su.Password)
			if err != nil {
				return fmt.Errorf("memory: user %q: %w", su.Email, err)
			}
			hash = h
		}
		u := repository.User{
			ID:           su.ID,
			Username:     su.Username,
			Email:        su.Email,
			PasswordHash: hash,
			CreatedAt:    now,
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		for _, acc := range su.Access {
			appID, ok := appIDs[acc.ClientID]
			if !ok {
				return fmt.Errorf("memory: user %q: unknown client id %q", su.Email, acc.ClientID)
			}
			if !hasRole(apps[acc.ClientID].Roles, acc.Role) {
				return fmt.Errorf("memory: user %q: role %q not defined by %q", su.Email, acc.Role, acc.ClientID)
			}
			u.Access = append(u.Access, repository.AccessGrant{ApplicationID: appID, Role: acc.Role, GrantedAt: now})
		}
		if err := r.PutUser(u); err != nil {
			return err
		}
	}
	return nil
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
