// Package workspace is a small tenant-scoped JSON API built on the isolation
// core: projects are read inside tenant transactions and checked with the
// access validator, memberships are listed, and the active organization is
// switched.
//
// Routes (relative to the mount point):
//
//	GET  /projects              projects of the active organization
//	GET  /projects/{id}         one project; 404 when hidden by RLS, 403 when owned elsewhere
//	GET  /memberships           the caller's memberships
//	POST /organizations/active  {"organization_id": "..."} switches the active organization
package workspace
