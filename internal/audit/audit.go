// Package audit emite eventos de auditoría del flujo OAuth como logs
// estructurados en el logger "audit".
package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

// Event identifica un hecho auditable.
type Event string

const (
	EventCodeIssued    Event = "oauth.code_issued"
	EventTokenIssued   Event = "oauth.token_issued"
	EventAccessDenied  Event = "oauth.access_denied"
	EventLoginFailed   Event = "oauth.login_failed"
	EventCodeReplay    Event = "oauth.code_replay"
	EventOriginBlocked Event = "oauth.origin_blocked"
)

// Log registra ev con los campos dados. Hereda request_id del logger del contexto.
func Log(ctx context.Context, ev Event, fields ...logger.Field) {
	base := []logger.Field{
		logger.String("event", string(ev)),
		logger.String("ts", time.Now().UTC().Format(time.RFC3339Nano)),
	}
	logger.From(ctx).Named("audit").Info(string(ev), append(base, fields...)...)
}
