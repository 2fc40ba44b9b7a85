// Package oauth contiene los DTOs de los endpoints /oauth/*.
package oauth

// ApplicationInfo es la vista pública de una aplicación. Nunca incluye el secret.
type ApplicationInfo struct {
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

// ValidateResponse es la respuesta de GET /oauth/validate.
type ValidateResponse struct {
	Success     bool            `json:"success"`
	Application ApplicationInfo `json:"application"`
}

// AuthorizeResponse es la respuesta de POST /oauth/authorize y /oauth/authorize-with-token.
type AuthorizeResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
}

// TokenUser es el usuario devuelto junto al access token.
type TokenUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenResponse es la respuesta de POST /oauth/token.
type TokenResponse struct {
	Success     bool      `json:"success"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	User        TokenUser `json:"user"`
	Role        string    `json:"role"`
}

// Nombres de campos del request (query, JSON o form).
const (
	FieldClientID            = "clientId"
	FieldRedirectURL         = "redirectUrl"
	FieldCodeChallenge       = "code_challenge"
	FieldCodeChallengeMethod = "code_challenge_method"
	FieldEmail               = "email"
	FieldPassword            = "password"
	FieldCode                = "code"
	FieldCodeVerifier        = "code_verifier"
)
