// Package health contiene los DTOs de /health y /readyz.
package health

import "time"

// LiveResponse es la respuesta de GET /health.
type LiveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthStatus es el estado de un componente.
type HealthStatus struct {
	Status string `json:"status"` // "ok" | "error"
	Error  string `json:"error,omitempty"`
}

// ReadyResponse es la respuesta de GET /readyz.
type ReadyResponse struct {
	Success    bool                    `json:"success"`
	Status     string                  `json:"status"` // "ready" | "unavailable"
	Version    string                  `json:"version,omitempty"`
	Components map[string]HealthStatus `json:"components"`
	Timestamp  time.Time               `json:"timestamp"`
}
