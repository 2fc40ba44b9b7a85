// Package helpers contiene utilidades HTTP compartidas por controllers y middlewares.
package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// MaxBodyBytes limita el body de los endpoints OAuth.
const MaxBodyBytes = 1 << 20

var (
	ErrInvalidBody         = errors.New("invalid request body")
	ErrUnsupportedBodyType = errors.New("unsupported content type")
)

// ReadFields decodifica un body JSON o application/x-www-form-urlencoded a un
// mapa de strings. Valores no string de JSON se ignoran. Body vacío => mapa vacío.
func ReadFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	if r.Body == nil {
		return map[string]string{}, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/json", "":
		return decodeJSONFields(r.Body)
	case "application/x-www-form-urlencoded":
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, ErrInvalidBody
		}
		vals, err := url.ParseQuery(string(b))
		if err != nil {
			return nil, ErrInvalidBody
		}
		out := make(map[string]string, len(vals))
		for k := range vals {
			out[k] = vals.Get(k)
		}
		return out, nil
	default:
		return nil, ErrUnsupportedBodyType
	}
}

func decodeJSONFields(body io.Reader) (map[string]string, error) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, ErrInvalidBody
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out, nil
}

// WriteJSON escribe una respuesta JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// BearerToken extrae el token de "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
