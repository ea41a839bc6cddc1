package membership

import "errors"

var (
	ErrMembershipNotFound = errors.New("membership.not_found")
	ErrInvariantViolation = errors.New("membership.multiple_active_organizations")
)
