package tenant

import (
	"context"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Resolver composes identity resolution and the active-organization lookup.
// It does not depend on HTTP and can be used by background jobs and socket
// handlers with the identity they carry.
type Resolver struct {
	identities    IdentityResolver
	organizations OrganizationLookup
	cfg           *config
}

// NewResolver creates a Resolver.
func NewResolver(identities IdentityResolver, organizations OrganizationLookup, opts ...Option) *Resolver {
	return &Resolver{
		identities:    identities,
		organizations: organizations,
		cfg:           newConfig(opts),
	}
}

// Resolve never fails: infrastructure errors are logged and degrade the result
// to an anonymous context, or to a user without organization when only the
// lookup failed.
func (r *Resolver) Resolve(ctx context.Context, raw any) Context {
	userID, ok, err := r.identities.Resolve(ctx, raw)
	if err != nil {
		r.cfg.logger.WarnContext(ctx, "identity resolution failed", logger.Error(err))
		return Context{}
	}
	if !ok {
		return Context{}
	}

	orgID, ok, err := r.organizations.ActiveOrganization(ctx, userID)
	if err != nil {
		r.cfg.logger.WarnContext(ctx, "active organization lookup failed", logger.UserID(userID), logger.Error(err))
		return Context{UserID: userID}
	}
	if !ok {
		return Context{UserID: userID}
	}

	return Context{UserID: userID, OrganizationID: orgID}
}
