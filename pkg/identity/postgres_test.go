package identity_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/internal/pgtest"
	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
	"github.com/dmitrymomot/tenantkit/pkg/rls/rlstest"
)

func TestPostgresUserStore_Scripted(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{
			OnQueryRow: func(string, []any) pgx.Row { return rlstest.ValuesRow(int64(7)) },
		}
		id, err := identity.NewPostgresUserStore(rls.New(db)).UserIDByExternalID(context.Background(), "google_999")
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)

		call, ok := db.Find("external_id = $1")
		require.True(t, ok)
		assert.Equal(t, []any{"google_999"}, call.Args)
		_, bound := db.Find("set_config")
		assert.False(t, bound)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := identity.NewPostgresUserStore(rls.New(&rlstest.DB{})).UserIDByExternalID(context.Background(), "google_unknown")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})
}

func TestPostgresUserStore_Integration(t *testing.T) {
	t.Parallel()

	pool := pgtest.New(t)
	uid := pgtest.CreateUser(t, pool, "google_999")
	r := identity.NewResolver(identity.NewPostgresUserStore(pgtest.Manager(pool)))
	ctx := context.Background()

	id, ok, err := r.Resolve(ctx, "google_999")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uid, id)

	_, ok, err = r.Resolve(ctx, "google_unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}
