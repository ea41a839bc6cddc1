package tenant

import "context"

// Context is the tenant context of one request. Zero values mean absent:
// UserID 0 is an anonymous caller, an empty OrganizationID means the user has
// no active organization. It is recomputed for every request and never cached.
type Context struct {
	UserID         int64  `json:"user_id,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// HasUser reports whether the caller was identified.
func (c Context) HasUser() bool {
	return c.UserID > 0
}

// HasOrganization reports whether an active organization is known.
func (c Context) HasOrganization() bool {
	return c.OrganizationID != ""
}

// IdentityResolver maps a raw session identity to a user id.
// *identity.Resolver satisfies it.
type IdentityResolver interface {
	Resolve(ctx context.Context, raw any) (userID int64, ok bool, err error)
}

// OrganizationLookup returns the active organization of a user.
// *membership.Store satisfies it.
type OrganizationLookup interface {
	ActiveOrganization(ctx context.Context, userID int64) (orgID string, ok bool, err error)
}
