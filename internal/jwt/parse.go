package jwt

import (
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Parse valida firma HS256 y exp, y devuelve las claims.
func (i *Issuer) Parse(token string) (jwtv5.MapClaims, error) {
	tok, err := jwtv5.Parse(token, func(t *jwtv5.Token) (any, error) {
		return i.secret, nil
	},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParsePortalSession valida un JWT de sesión del portal y devuelve el user id
// (claim "id").
func (i *Issuer) ParsePortalSession(token string) (string, error) {
	claims, err := i.Parse(token)
	if err != nil {
		return "", err
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", fmt.Errorf("%w: id", ErrMissingClaim)
	}
	return id, nil
}
