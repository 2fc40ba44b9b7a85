// Package pkce implementa la verificación Proof Key for Code Exchange (RFC 7636).
//
// Solo se soporta el método S256, con el literal exacto "S256" (case-sensitive)
// en todos los endpoints.
package pkce

import (
	"crypto/subtle"
	"errors"

	tokens "github.com/dropDatabas3/devportal/internal/security/token"
)

// MethodS256 es el único code_challenge_method soportado.
const MethodS256 = "S256"

const (
	minVerifierLen = 43
	maxVerifierLen = 128
)

// ErrInvalidVerifierFormat indica un verifier fuera del alfabeto o longitud de RFC 7636.
var ErrInvalidVerifierFormat = errors.New("pkce: invalid code_verifier format")

// SupportedMethod reporta si method es exactamente "S256".
func SupportedMethod(method string) bool {
	return method == MethodS256
}

// Challenge calcula BASE64URL-NOPAD(SHA256(verifier)).
func Challenge(verifier string) string {
	return tokens.SHA256Base64URL(verifier)
}

// Verify compara el challenge almacenado con el derivado del verifier.
// La comparación es de tiempo constante respecto al contenido.
func Verify(challenge, verifier string) bool {
	computed := Challenge(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}

// GenerateVerifier genera un verifier de 43 caracteres (32 bytes aleatorios).
func GenerateVerifier() (string, error) {
	return tokens.GenerateOpaqueToken(32)
}

// ValidateVerifier chequea longitud (43-128) y alfabeto unreserved de RFC 7636.
// Se usa en herramientas de cliente; el canje no lo exige para no divergir
// de los clientes existentes.
func ValidateVerifier(v string) error {
	if len(v) < minVerifierLen || len(v) > maxVerifierLen {
		return ErrInvalidVerifierFormat
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '_', c == '~':
		default:
			return ErrInvalidVerifierFormat
		}
	}
	return nil
}
