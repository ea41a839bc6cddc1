package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// CheckAccess decides whether a resource owned by resourceOrgID may be used in
// the tenant context tc. A nil owner marks a legacy resource and is always
// allowed, as is a context without active organization.
//
// This check is independent of RLS and covers code paths that read resources
// before a tenant transaction is opened.
func CheckAccess(resourceOrgID *string, tc Context) error {
	if resourceOrgID == nil || !tc.HasOrganization() {
		return nil
	}
	if *resourceOrgID != tc.OrganizationID {
		return ErrCrossTenantAccess
	}
	return nil
}

// AccessGuard checks one resource against request contexts.
type AccessGuard struct {
	resourceOrgID *string
}

// ValidateAccess returns a guard for a resource owned by resourceOrgID.
func ValidateAccess(resourceOrgID *string) AccessGuard {
	return AccessGuard{resourceOrgID: resourceOrgID}
}

// Check applies CheckAccess to the tenant context stored in ctx.
func (g AccessGuard) Check(ctx context.Context) error {
	tc, _ := FromContext(ctx)
	return CheckAccess(g.resourceOrgID, tc)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError renders tenant errors as 403 JSON. Other errors become a generic
// 500 so internal details never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusForbidden
	var body errorBody

	switch {
	case errors.Is(err, ErrCrossTenantAccess):
		body = errorBody{Error: "cross_tenant_access", Message: "The resource belongs to another organization."}
	case errors.Is(err, ErrNoActiveOrganization):
		body = errorBody{Error: "tenant_required", Message: "Select an active organization to continue."}
	case errors.Is(err, ErrIdentityRequired):
		body = errorBody{Error: "identity_required", Message: "Authentication is required."}
	default:
		status = http.StatusInternalServerError
		body = errorBody{Error: "internal_error", Message: "Internal server error."}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
