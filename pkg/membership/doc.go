// Package membership reads and changes which organization is active for a
// user. A user has at most one active membership; SetActiveOrganization is the
// only supported way to change it and does so atomically.
//
// All queries run in tenant transactions opened by rls.Manager, so membership
// rows are subject to the memberships RLS policy of the calling user.
package membership
