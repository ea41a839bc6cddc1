package tenant

import "errors"

var (
	// ErrNoActiveOrganization is returned by gates when the request has no
	// active organization.
	ErrNoActiveOrganization = errors.New("tenant.no_active_organization")

	// ErrIdentityRequired is returned by gates when the caller is anonymous.
	ErrIdentityRequired = errors.New("tenant.identity_required")

	// ErrCrossTenantAccess is returned when a resource belongs to another organization.
	ErrCrossTenantAccess = errors.New("tenant.cross_tenant_access")
)
