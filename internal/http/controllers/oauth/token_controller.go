package oauth

import (
	"net/http"

	dto "github.com/dropDatabas3/devportal/internal/http/dto/oauth"
	"github.com/dropDatabas3/devportal/internal/http/helpers"
	svc "github.com/dropDatabas3/devportal/internal/http/services/oauth"
)

// TokenController maneja POST /oauth/token.
type TokenController struct {
	service svc.TokenService
}

func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token canjea code + code_verifier por un access token.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}

	res, err := c.service.Exchange(r.Context(), svc.ExchangeRequest{
		Code:         fields[dto.FieldCode],
		CodeVerifier: fields[dto.FieldCodeVerifier],
		ClientID:     fields[dto.FieldClientID],
	})
	if err != nil {
		writeServiceError(r.Context(), w, err, dto.FieldCode, dto.FieldCodeVerifier, dto.FieldClientID)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		Success:     true,
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		User: dto.TokenUser{
			ID:       res.User.ID,
			Username: res.User.Username,
			Email:    res.User.Email,
		},
		Role: res.Role,
	})
}
