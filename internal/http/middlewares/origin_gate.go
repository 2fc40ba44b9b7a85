package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/devportal/internal/audit"
	httperrors "github.com/dropDatabas3/devportal/internal/http/errors"
	"github.com/dropDatabas3/devportal/internal/metrics"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

// originGateBodyLimit acota cuánto body se lee para extraer el clientId.
const originGateBodyLimit = 64 << 10

// OriginChecker decide si un Origin puede llamar a los endpoints OAuth de clientID.
type OriginChecker interface {
	OriginAllowed(ctx context.Context, clientID, origin string) bool
}

// WithOriginGate aplica CORS dinámico en los endpoints OAuth públicos: además del
// portal, se acepta el origin del redirect registrado de la aplicación.
//
// Pre-flight OPTIONS siempre responde 204; el rechazo ocurre en la request real.
func WithOriginGate(checker OriginChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				if origin != "" {
					setCORSHeaders(w.Header(), origin)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			clientID := clientIDFromRequest(r)
			if !checker.OriginAllowed(r.Context(), clientID, origin) {
				logger.From(r.Context()).Warn("oauth origin blocked",
					logger.Layer("middleware"),
					logger.Origin(origin),
					logger.ClientID(clientID),
				)
				audit.Log(r.Context(), audit.EventOriginBlocked, logger.Origin(origin), logger.ClientID(clientID))
				metrics.RecordCORSReject(origin)
				httperrors.WriteError(w, httperrors.ErrOriginNotAllowed)
				return
			}

			setCORSHeaders(w.Header(), origin)
			next.ServeHTTP(w, r)
		})
	}
}

// clientIDFromRequest lee clientId del body (POST) o del query (resto).
// El body se restaura para el handler.
func clientIDFromRequest(r *http.Request) string {
	if r.Method != http.MethodPost || r.Body == nil {
		return r.URL.Query().Get("clientId")
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, originGateBodyLimit))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	if err != nil {
		return ""
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/x-www-form-urlencoded":
		vals, err := url.ParseQuery(string(head))
		if err != nil {
			return ""
		}
		return vals.Get("clientId")
	default:
		var body struct {
			ClientID string `json:"clientId"`
		}
		if json.Unmarshal(head, &body) != nil {
			return ""
		}
		return body.ClientID
	}
}
