package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa, para logs; nunca se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError convierte un error genérico en AppError.
// Si no lo es, devuelve ErrServer conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrServer.WithCause(err)
}

// WithDetail devuelve una COPIA con detalle adicional.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithMessage devuelve una COPIA con otro mensaje.
func (e *AppError) WithMessage(msg string) *AppError {
	newErr := *e
	newErr.Message = msg
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

// ---------------------------------------------------------------------------------
// 400 Bad Request
// ---------------------------------------------------------------------------------

var (
	ErrInvalidRequest = &AppError{
		Code:       "invalid_request",
		Message:    "Missing required parameters",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnsupportedChallengeMethod = &AppError{
		Code:       "unsupported_challenge_method",
		Message:    "Invalid code_challenge_method. Only S256 is supported.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrRedirectMismatch = &AppError{
		Code:       "redirect_mismatch",
		Message:    "Redirect URL does not match registered URI",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrExpiredGrant = &AppError{
		Code:       "expired_grant",
		Message:    "Authorization code has expired",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrClientMismatch = &AppError{
		Code:       "client_mismatch",
		Message:    "Client ID mismatch",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidVerifier = &AppError{
		Code:       "invalid_verifier",
		Message:    "Invalid code verifier",
		HTTPStatus: http.StatusBadRequest,
	}
)

// ---------------------------------------------------------------------------------
// 401 / 403
// ---------------------------------------------------------------------------------

var (
	ErrInvalidCredentials = &AppError{
		Code:       "invalid_credentials",
		Message:    "Invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrAccessDenied = &AppError{
		Code:       "access_denied",
		Message:    "You do not have access to this application. Please request access first.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrOriginNotAllowed = &AppError{
		Code:       "origin_not_allowed",
		Message:    "CORS: Origin not allowed",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// 404 / 405 / 429
// ---------------------------------------------------------------------------------

var (
	ErrUnknownClient = &AppError{
		Code:       "unknown_client",
		Message:    "Invalid client ID",
		HTTPStatus: http.StatusNotFound,
	}

	ErrInvalidGrant = &AppError{
		Code:       "invalid_grant",
		Message:    "Invalid or expired authorization code",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "route_not_found",
		Message:    "Route not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "method_not_allowed",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrRateLimited = &AppError{
		Code:       "rate_limited",
		Message:    "Too many requests from this IP, please try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// ---------------------------------------------------------------------------------
// 5xx
// ---------------------------------------------------------------------------------

var (
	ErrServer = &AppError{
		Code:       "server_error",
		Message:    "Server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrPanic = &AppError{
		Code:       "server_error",
		Message:    "Something went wrong!",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "service_unavailable",
		Message:    "Service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
