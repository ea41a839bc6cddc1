// Package tenant derives the tenant context of a request and guards resources
// against cross-tenant access.
//
// The tenant context is the pair (user id, active organization id). Middleware
// computes it once per request from the session identity through a Resolver
// that composes an IdentityResolver and an OrganizationLookup. Both halves are
// optional: anonymous requests and users without an active organization pass
// through with the corresponding field left empty. Nothing is cached, so an
// organization switch is visible on the very next request.
//
// Basic usage:
//
//	resolver := tenant.NewResolver(identities, memberships, tenant.WithLogger(log))
//	r.Use(tenant.Middleware(session.IdentitySource(), resolver,
//		tenant.WithSkipPaths([]string{"/health", "/metrics"}),
//	))
//
//	r.With(tenant.RequireTenant()).Get("/api/projects", listProjects)
//
// Handlers that load a resource outside of a tenant transaction must check it:
//
//	if err := tenant.ValidateAccess(project.OrganizationID).Check(r.Context()); err != nil {
//		tenant.WriteError(w, err)
//		return
//	}
//
// Gates and WriteError respond with 403 and a JSON body {"error", "message"}.
package tenant
