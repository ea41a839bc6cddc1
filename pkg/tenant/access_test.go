package tenant_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func ptr(s string) *string { return &s }

func TestCheckAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resource *string
		tc       tenant.Context
		wantErr  error
	}{
		{name: "legacy resource", resource: nil, tc: tenant.Context{UserID: 1, OrganizationID: "a"}},
		{name: "no organization in context", resource: ptr("a"), tc: tenant.Context{UserID: 1}},
		{name: "anonymous", resource: ptr("a"), tc: tenant.Context{}},
		{name: "same organization", resource: ptr("a"), tc: tenant.Context{UserID: 1, OrganizationID: "a"}},
		{name: "other organization", resource: ptr("b"), tc: tenant.Context{UserID: 1, OrganizationID: "a"}, wantErr: tenant.ErrCrossTenantAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tenant.CheckAccess(tt.resource, tt.tc)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccessGuard_Check(t *testing.T) {
	t.Parallel()

	ctx := tenant.WithContext(context.Background(), tenant.Context{UserID: 1, OrganizationID: "a"})

	assert.NoError(t, tenant.ValidateAccess(ptr("a")).Check(ctx))
	assert.ErrorIs(t, tenant.ValidateAccess(ptr("b")).Check(ctx), tenant.ErrCrossTenantAccess)
	assert.NoError(t, tenant.ValidateAccess(ptr("b")).Check(context.Background()))
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{err: tenant.ErrCrossTenantAccess, wantStatus: http.StatusForbidden, wantCode: `"cross_tenant_access"`},
		{err: tenant.ErrNoActiveOrganization, wantStatus: http.StatusForbidden, wantCode: `"tenant_required"`},
		{err: tenant.ErrIdentityRequired, wantStatus: http.StatusForbidden, wantCode: `"identity_required"`},
		{err: errors.New("pq: password authentication failed"), wantStatus: http.StatusInternalServerError, wantCode: `"internal_error"`},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			tenant.WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.NotContains(t, w.Body.String(), "password")
		})
	}
}
