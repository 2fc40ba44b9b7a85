package oauth

import (
	"net/http"

	dto "github.com/dropDatabas3/devportal/internal/http/dto/oauth"
	"github.com/dropDatabas3/devportal/internal/http/helpers"
	svc "github.com/dropDatabas3/devportal/internal/http/services/oauth"
)

// AuthorizeController maneja POST /oauth/authorize y /oauth/authorize-with-token.
type AuthorizeController struct {
	service svc.AuthorizeService
}

func NewAuthorizeController(s svc.AuthorizeService) *AuthorizeController {
	return &AuthorizeController{service: s}
}

func clientParams(f map[string]string) svc.ClientParams {
	return svc.ClientParams{
		ClientID:            f[dto.FieldClientID],
		RedirectURL:         f[dto.FieldRedirectURL],
		CodeChallenge:       f[dto.FieldCodeChallenge],
		CodeChallengeMethod: f[dto.FieldCodeChallengeMethod],
	}
}

// Authorize autentica con email/password y emite un authorization code.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}

	code, err := c.service.Authorize(r.Context(), svc.AuthorizeRequest{
		ClientParams: clientParams(fields),
		Email:        fields[dto.FieldEmail],
		Password:     fields[dto.FieldPassword],
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AuthorizeResponse{Success: true, Code: code})
}

// AuthorizeWithToken emite un code usando la sesión del portal (Bearer).
func (c *AuthorizeController) AuthorizeWithToken(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}

	code, err := c.service.AuthorizeWithSession(r.Context(), svc.SessionAuthorizeRequest{
		ClientParams: clientParams(fields),
		SessionToken: helpers.BearerToken(r),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AuthorizeResponse{Success: true, Code: code})
}
