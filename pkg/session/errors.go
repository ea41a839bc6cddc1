package session

import "errors"

var (
	// ErrInvalidSession indicates a session without token or expiry
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionExpired indicates the session has expired
	ErrSessionExpired = errors.New("session.expired")

	// ErrSessionNotFound indicates no session was found
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrStoreUnavailable wraps backend failures
	ErrStoreUnavailable = errors.New("session.store_unavailable")
)
