package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
)

// AuthCodes implementa AuthCodeRepository en memoria. Claim es la única
// operación que consume un code; se resuelve bajo el mismo lock que Create.
type AuthCodes struct {
	mu    sync.Mutex
	codes map[string]repository.AuthorizationCode
}

var _ repository.AuthCodeRepository = (*AuthCodes)(nil)

func NewAuthCodes() *AuthCodes {
	return &AuthCodes{codes: make(map[string]repository.AuthorizationCode)}
}

func (s *AuthCodes) Create(_ context.Context, c *repository.AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codes[c.Code]; exists {
		return repository.ErrConflict
	}
	s.codes[c.Code] = *c
	return nil
}

func (s *AuthCodes) Get(_ context.Context, code string) (*repository.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *AuthCodes) Claim(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code]; !ok {
		return false, nil
	}
	delete(s.codes, code)
	return true, nil
}

func (s *AuthCodes) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, c := range s.codes {
		if c.Expired(now) {
			delete(s.codes, k)
			n++
		}
	}
	return n, nil
}

func (s *AuthCodes) Ping(context.Context) error { return nil }

// Len retorna la cantidad de codes almacenados.
func (s *AuthCodes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}
