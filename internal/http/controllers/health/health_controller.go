// Package health contiene los controllers de health check.
package health

import (
	"net/http"

	dto "github.com/dropDatabas3/devportal/internal/http/dto/health"
	"github.com/dropDatabas3/devportal/internal/http/helpers"
	svc "github.com/dropDatabas3/devportal/internal/http/services/health"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

// LiveMessage es el mensaje de GET /health.
const LiveMessage = "DevPortal API is running"

// HealthController maneja los endpoints de health check.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Health maneja GET /health (liveness, sin dependencias).
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.LiveResponse{Success: true, Message: LiveMessage})
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	response := c.service.Check(ctx)
	if response.Version != "" {
		w.Header().Set("X-Service-Version", response.Version)
	}

	statusCode := http.StatusOK
	if response.Status == svc.StatusUnavailable {
		statusCode = http.StatusServiceUnavailable
	}

	log.Debug("health check completed",
		logger.String("status", response.Status),
		logger.Int("components_count", len(response.Components)),
	)
	helpers.WriteJSON(w, statusCode, response)
}
