// Package oauth contiene los controllers de /oauth/*.
package oauth

import (
	"net/http"

	dto "github.com/dropDatabas3/devportal/internal/http/dto/oauth"
	"github.com/dropDatabas3/devportal/internal/http/helpers"
	svc "github.com/dropDatabas3/devportal/internal/http/services/oauth"
)

// ValidateController maneja GET /oauth/validate.
type ValidateController struct {
	service svc.ValidateService
}

func NewValidateController(s svc.ValidateService) *ValidateController {
	return &ValidateController{service: s}
}

// Validate comprueba un pedido de autorización antes de mostrar el login.
func (c *ValidateController) Validate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	app, err := c.service.Validate(r.Context(), svc.ClientParams{
		ClientID:            q.Get(dto.FieldClientID),
		RedirectURL:         q.Get(dto.FieldRedirectURL),
		CodeChallenge:       q.Get(dto.FieldCodeChallenge),
		CodeChallengeMethod: q.Get(dto.FieldCodeChallengeMethod),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err,
			dto.FieldClientID, dto.FieldRedirectURL, dto.FieldCodeChallenge, dto.FieldCodeChallengeMethod)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ValidateResponse{
		Success: true,
		Application: dto.ApplicationInfo{
			Name:     app.Name,
			ClientID: app.ClientID,
		},
	})
}
