// Package cached decora el registro de aplicaciones con un cache de lookups.
//
// Solo se cachean resultados positivos: un client id desconocido o un error
// del backend siempre vuelven a consultar el registro.
package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/devportal/internal/cache"
	"github.com/dropDatabas3/devportal/internal/domain/repository"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

type Applications struct {
	next  repository.ApplicationRepository
	cache cache.Client
	ttl   time.Duration
}

var _ repository.ApplicationRepository = (*Applications)(nil)

// NewApplications envuelve next. ttl <= 0 desactiva el cache y devuelve next.
func NewApplications(next repository.ApplicationRepository, c cache.Client, ttl time.Duration) repository.ApplicationRepository {
	if ttl <= 0 || c == nil {
		return next
	}
	return &Applications{next: next, cache: c, ttl: ttl}
}

type entry struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	RedirectURI string    `json:"redirect_uri"`
	Roles       []string  `json:"roles"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func cacheKey(clientID string) string { return "app:" + clientID }

func (a *Applications) GetByClientID(ctx context.Context, clientID string) (*repository.Application, error) {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Op("cached.GetByClientID"))

	if raw, err := a.cache.Get(ctx, cacheKey(clientID)); err == nil {
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err == nil {
			return &repository.Application{
				ID: e.ID, ClientID: e.ClientID, Name: e.Name, RedirectURI: e.RedirectURI,
				Roles: e.Roles, Status: e.Status, CreatedAt: e.CreatedAt,
			}, nil
		}
		_ = a.cache.Delete(ctx, cacheKey(clientID))
	} else if !cache.IsNotFound(err) {
		log.Debug("cache get failed", logger.Err(err))
	}

	app, err := a.next.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(entry{
		ID: app.ID, ClientID: app.ClientID, Name: app.Name, RedirectURI: app.RedirectURI,
		Roles: app.Roles, Status: app.Status, CreatedAt: app.CreatedAt,
	})
	if err == nil {
		if err := a.cache.Set(ctx, cacheKey(clientID), string(b), a.ttl); err != nil {
			log.Debug("cache set failed", logger.Err(err))
		}
	}
	return app, nil
}
