package oauth

import "errors"

// Errores del flujo authorization code + PKCE. Los controllers los mapean a
// httperrors con errors.Is.
var (
	ErrInvalidRequest             = errors.New("oauth: invalid_request")
	ErrUnsupportedChallengeMethod = errors.New("oauth: unsupported_challenge_method")
	ErrUnknownClient              = errors.New("oauth: unknown_client")
	ErrRedirectMismatch           = errors.New("oauth: redirect_mismatch")
	ErrInvalidCredentials         = errors.New("oauth: invalid_credentials")
	ErrAccessDenied               = errors.New("oauth: access_denied")
	ErrInvalidGrant               = errors.New("oauth: invalid_grant")
	ErrExpiredGrant               = errors.New("oauth: expired_grant")
	ErrClientMismatch             = errors.New("oauth: client_mismatch")
	ErrInvalidVerifier            = errors.New("oauth: invalid_verifier")
)
