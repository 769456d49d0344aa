package service

import "errors"

// Client-facing auth failures. This set is closed: anything the orchestrator
// returns that is not one of these is an internal fault and must surface to
// the client as a generic error only.
var (
	ErrValidation           = errors.New("invalid input")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrMissingToken         = errors.New("refresh token missing")
	ErrInvalidToken         = errors.New("refresh token unreadable")
	ErrInvalidOrExpired     = errors.New("token invalid or expired")
	ErrAccountNotFound      = errors.New("account not found")
	ErrNoActiveSession      = errors.New("no active session")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match active session")
)

// IsAuthFailure reports whether err belongs to the closed taxonomy above.
func IsAuthFailure(err error) bool {
	for _, known := range []error{
		ErrValidation,
		ErrDuplicateEmail,
		ErrInvalidCredentials,
		ErrMissingToken,
		ErrInvalidToken,
		ErrInvalidOrExpired,
		ErrAccountNotFound,
		ErrNoActiveSession,
		ErrRefreshTokenMismatch,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
