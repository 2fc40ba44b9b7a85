package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

// Field y Logger son alias de zap para no importar zap en los callers.
type (
	Field  = zap.Field
	Logger = zap.Logger
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func DurationMs(v time.Duration) zap.Field { return zap.Int64("duration_ms", v.Milliseconds()) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Origin crea un campo para el header Origin de un request cross-origin.
func Origin(v string) zap.Field { return zap.String("origin", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// ClientID crea un campo para el client id público de una aplicación.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// ApplicationID crea un campo para el id interno de una aplicación.
func ApplicationID(v string) zap.Field { return zap.String("application_id", v) }

func UserID(v string) zap.Field { return zap.String("user_id", v) }

func Role(v string) zap.Field { return zap.String("role", v) }

// CodeRef identifica un authorization code sin exponerlo: primeros 12 hex de sha256(code).
func CodeRef(code string) zap.Field {
	sum := sha256.Sum256([]byte(code))
	return zap.String("code_ref", hex.EncodeToString(sum[:])[:12])
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Count(v int) zap.Field { return zap.Int("count", v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
