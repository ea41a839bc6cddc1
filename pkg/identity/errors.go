package identity

import "errors"

var (
	// ErrUserNotFound is returned by a UserStore when no user carries the external id.
	ErrUserNotFound = errors.New("identity.user_not_found")

	// ErrUnresolved marks a value that does not map to any user. Resolve reports
	// it as ok=false; callers that prefer errors can use ResolveStrict.
	ErrUnresolved = errors.New("identity.unresolved")
)
