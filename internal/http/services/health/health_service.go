// Package health contiene el service para health checks.
package health

import (
	"context"
	"sort"
	"time"

	dto "github.com/dropDatabas3/devportal/internal/http/dto/health"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

const (
	StatusReady       = "ready"
	StatusUnavailable = "unavailable"

	checkTimeout = 2 * time.Second
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.ReadyResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Version string
	// Checks por componente ("storage", "codes", "redis"...). Un error marca
	// el servicio como unavailable.
	Checks map[string]func(ctx context.Context) error
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.ReadyResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	resp := dto.ReadyResponse{
		Success:    true,
		Status:     StatusReady,
		Version:    s.deps.Version,
		Components: make(map[string]dto.HealthStatus, len(s.deps.Checks)),
		Timestamp:  time.Now().UTC(),
	}

	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.deps.Checks[name](cctx)
		cancel()
		if err != nil {
			log.Warn("component unhealthy", logger.String("component_name", name), logger.Err(err))
			resp.Components[name] = dto.HealthStatus{Status: "error", Error: "unreachable"}
			resp.Status = StatusUnavailable
			resp.Success = false
			continue
		}
		resp.Components[name] = dto.HealthStatus{Status: "ok"}
	}
	return resp
}
