package tenant_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		_, ok := tenant.FromContext(ctx)
		assert.False(t, ok)

		_, ok = tenant.UserIDFromContext(ctx)
		assert.False(t, ok)
		_, ok = tenant.OrganizationIDFromContext(ctx)
		assert.False(t, ok)
		assert.Panics(t, func() { tenant.MustFromContext(ctx) })
	})

	t.Run("full context", func(t *testing.T) {
		t.Parallel()

		tc := tenant.Context{UserID: 5, OrganizationID: "org"}
		ctx := tenant.WithContext(context.Background(), tc)

		uid, ok := tenant.UserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, int64(5), uid)

		org, ok := tenant.OrganizationIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "org", org)
		assert.Equal(t, tc, tenant.MustFromContext(ctx))
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithFormat(logger.FormatJSON),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)

	log.InfoContext(context.Background(), "anonymous")
	assert.NotContains(t, buf.String(), "user_id")

	buf.Reset()
	ctx := tenant.WithContext(context.Background(), tenant.Context{UserID: 5, OrganizationID: "org"})
	log.InfoContext(ctx, "tenant")
	assert.Contains(t, buf.String(), `"tenant":{"user_id":5,"organization_id":"org"}`)

}
