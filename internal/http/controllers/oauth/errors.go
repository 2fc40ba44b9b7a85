package oauth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/devportal/internal/http/errors"
	"github.com/dropDatabas3/devportal/internal/http/helpers"
	svc "github.com/dropDatabas3/devportal/internal/http/services/oauth"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

var serviceErrors = []struct {
	err    error
	appErr *httperrors.AppError
}{
	{svc.ErrInvalidRequest, httperrors.ErrInvalidRequest},
	{svc.ErrUnsupportedChallengeMethod, httperrors.ErrUnsupportedChallengeMethod},
	{svc.ErrUnknownClient, httperrors.ErrUnknownClient},
	{svc.ErrRedirectMismatch, httperrors.ErrRedirectMismatch},
	{svc.ErrInvalidCredentials, httperrors.ErrInvalidCredentials},
	{svc.ErrAccessDenied, httperrors.ErrAccessDenied},
	{svc.ErrInvalidGrant, httperrors.ErrInvalidGrant},
	{svc.ErrExpiredGrant, httperrors.ErrExpiredGrant},
	{svc.ErrClientMismatch, httperrors.ErrClientMismatch},
	{svc.ErrInvalidVerifier, httperrors.ErrInvalidVerifier},
}

// writeServiceError traduce errores del service al envelope HTTP. Errores no
// esperados se loguean con la causa y salen como server_error.
// required, si viene, se lista en el mensaje de invalid_request.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, required ...string) {
	if errors.Is(err, svc.ErrInvalidRequest) && len(required) > 0 {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithMessage(
			"Missing required parameters: "+strings.Join(required, ", ")))
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			httperrors.WriteError(w, m.appErr)
			return
		}
	}
	logger.From(ctx).Error("oauth request failed", logger.Layer("controller"), logger.Err(err))
	httperrors.WriteError(w, httperrors.ErrServer.WithCause(err))
}

// readBody decodifica el body (JSON o form). Body inválido => invalid_request.
func readBody(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	fields, err := helpers.ReadFields(w, r)
	if err != nil {
		logger.From(r.Context()).Debug("invalid body", logger.Layer("controller"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDetail(err.Error()))
		return nil, false
	}
	return fields, true
}
