// Package jwt firma y valida los JWT HS256 del portal.
//
// Los access tokens para aplicaciones y las sesiones del portal comparten la
// misma clave simétrica.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrWeakSecret   = errors.New("jwt: signing secret is empty")
	ErrInvalidToken = errors.New("jwt: invalid token")
	ErrMissingClaim = errors.New("jwt: missing claim")
)

// AccessClaims son los datos del usuario y de la app incluidos en el access token.
type AccessClaims struct {
	UserID        string
	Username      string
	Email         string
	ApplicationID string
	ClientID      string
	Role          string
}

// Issuer firma tokens HS256 con un secreto compartido.
type Issuer struct {
	Iss       string        // "iss"
	AccessTTL time.Duration // ventana de validez del access token
	secret    []byte
	now       func() time.Time
}

func NewIssuer(iss string, secret []byte, accessTTL time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrWeakSecret
	}
	return &Issuer{
		Iss:       iss,
		AccessTTL: accessTTL,
		secret:    append([]byte(nil), secret...),
		now:       time.Now,
	}, nil
}

// WithClock reemplaza el reloj (tests).
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueAccess emite un access token para la app. Devuelve el JWT y su exp.
func (i *Issuer) IssueAccess(c AccessClaims) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.MapClaims{
		"iss":           i.Iss,
		"sub":           c.UserID,
		"aud":           c.ClientID,
		"iat":           now.Unix(),
		"exp":           exp.Unix(),
		"userId":        c.UserID,
		"username":      c.Username,
		"email":         c.Email,
		"applicationId": c.ApplicationID,
		"clientId":      c.ClientID,
		"role":          c.Role,
	}
	signed, err := i.SignRaw(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// SignRaw firma un MapClaims arbitrario con header typ=JWT.
func (i *Issuer) SignRaw(claims jwtv5.MapClaims) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.secret)
}
