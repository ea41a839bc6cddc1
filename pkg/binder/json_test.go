package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/binder"
)

type switchRequest struct {
	OrganizationID string `json:"organization_id"`
}

func jsonRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/organizations/active", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		var req switchRequest
		err := binder.JSON()(jsonRequest(`{"organization_id":"org-a"}`, "application/json; charset=utf-8"), &req)
		require.NoError(t, err)
		assert.Equal(t, "org-a", req.OrganizationID)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		want        error
	}{
		{"missing content type", `{"organization_id":"x"}`, "", binder.ErrMissingContentType},
		{"wrong content type", `{"organization_id":"x"}`, "text/plain", binder.ErrUnsupportedMediaType},
		{"empty body", ``, "application/json", binder.ErrFailedToParseJSON},
		{"malformed", `{"organization_id":`, "application/json", binder.ErrFailedToParseJSON},
		{"unknown field", `{"org":"x"}`, "application/json", binder.ErrFailedToParseJSON},
		{"trailing data", `{"organization_id":"x"}{}`, "application/json", binder.ErrFailedToParseJSON},
		{"too large", `{"organization_id":"` + strings.Repeat("a", binder.DefaultMaxJSONSize) + `"}`, "application/json", binder.ErrFailedToParseJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req switchRequest
			err := binder.JSON()(jsonRequest(tt.body, tt.contentType), &req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
