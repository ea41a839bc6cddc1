package rls_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/rls"
	"github.com/dmitrymomot/tenantkit/pkg/rls/rlstest"
)

func TestManager_WithTenantTx(t *testing.T) {
	t.Parallel()

	t.Run("sets the variable before any other statement and commits", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		mgr := rls.New(db)

		err := mgr.WithTenantTx(context.Background(), 42, func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "UPDATE projects SET name = $1 WHERE id = $2", "x", 1)
			return err
		})
		require.NoError(t, err)

		calls := db.Calls()
		require.Len(t, calls, 4)
		assert.Equal(t, rlstest.KindBegin, calls[0].Kind)
		assert.Equal(t, "SELECT set_config($1, $2, true)", calls[1].SQL)
		assert.Equal(t, []any{"app.current_user_id", "42"}, calls[1].Args)
		assert.Equal(t, "UPDATE projects SET name = $1 WHERE id = $2", calls[2].SQL)
		assert.Equal(t, rlstest.KindCommit, calls[3].Kind)
	})

	t.Run("fails closed for non-positive ids without touching the database", func(t *testing.T) {
		t.Parallel()

		for _, id := range []int64{0, -1} {
			db := &rlstest.DB{}
			called := false

			err := rls.New(db).WithTenantTx(context.Background(), id, func(context.Context, pgx.Tx) error {
				called = true
				return nil
			})

			assert.ErrorIs(t, err, rls.ErrInvalidTenantIdentity)
			assert.False(t, called)
			assert.Empty(t, db.Calls())
		}
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		boom := errors.New("boom")

		err := rls.New(db).WithTenantTx(context.Background(), 7, func(context.Context, pgx.Tx) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{rlstest.KindBegin, rlstest.KindExec, rlstest.KindRollback}, db.Kinds())
	})

	t.Run("rolls back and re-panics when fn panics", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}

		assert.Panics(t, func() {
			_ = rls.New(db).WithTenantTx(context.Background(), 7, func(context.Context, pgx.Tx) error {
				panic("handler bug")
			})
		})
		assert.Equal(t, []string{rlstest.KindBegin, rlstest.KindExec, rlstest.KindRollback}, db.Kinds())
	})

	t.Run("rolls back when the context is cancelled during fn", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		err := rls.New(db).WithTenantTx(ctx, 7, func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "INSERT INTO projects (name) VALUES ($1)", "draft")
			cancel()
			return err
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{rlstest.KindBegin, rlstest.KindExec, rlstest.KindExec, rlstest.KindRollback}, db.Kinds())
	})

	t.Run("does not begin on a cancelled context", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false

		err := rls.New(db).WithTenantTx(ctx, 7, func(context.Context, pgx.Tx) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
		assert.NotContains(t, db.Kinds(), rlstest.KindCommit)
	})

	t.Run("does not run fn when the variable cannot be set", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{
			OnExec: func(string, []any) (pgconn.CommandTag, error) {
				return pgconn.CommandTag{}, errors.New("connection reset")
			},
		}
		called := false

		err := rls.New(db).WithTenantTx(context.Background(), 7, func(context.Context, pgx.Tx) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, rls.ErrSetTenantContext)
		assert.False(t, called)
		assert.Equal(t, rlstest.KindRollback, db.Kinds()[len(db.Kinds())-1])
	})

	t.Run("returns begin errors", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{BeginErr: errors.New("pool closed")}
		err := rls.New(db).WithTenantTx(context.Background(), 7, func(context.Context, pgx.Tx) error { return nil })
		assert.EqualError(t, err, "pool closed")
	})

	t.Run("switches to the local role after the variable", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		mgr := rls.New(db, rls.WithLocalRole("tenant_app"), rls.WithSetting("app.uid"))

		require.NoError(t, mgr.WithTenantTx(context.Background(), 3, func(context.Context, pgx.Tx) error { return nil }))

		assert.Equal(t, []string{
			"SELECT set_config($1, $2, true)",
			`SET LOCAL ROLE "tenant_app"`,
		}, db.Statements())
		call, ok := db.Find("set_config")
		require.True(t, ok)
		assert.Equal(t, []any{"app.uid", "3"}, call.Args)
	})
}

func TestManager_WithOptionalTenantTx(t *testing.T) {
	t.Parallel()

	t.Run("nil user runs without the variable", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		err := rls.New(db, rls.WithLocalRole("tenant_app")).WithOptionalTenantTx(context.Background(), nil, func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "SELECT 1")
			return err
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"SELECT 1"}, db.Statements())
	})

	t.Run("user delegates to the tenant transaction", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		id := int64(9)
		require.NoError(t, rls.New(db).WithOptionalTenantTx(context.Background(), &id, func(context.Context, pgx.Tx) error { return nil }))

		_, ok := db.Find("set_config")
		assert.True(t, ok)
	})

	t.Run("pointer to zero still fails closed", func(t *testing.T) {
		t.Parallel()

		db := &rlstest.DB{}
		zero := int64(0)
		err := rls.New(db).WithOptionalTenantTx(context.Background(), &zero, func(context.Context, pgx.Tx) error { return nil })

		assert.ErrorIs(t, err, rls.ErrInvalidTenantIdentity)
		assert.Empty(t, db.Calls())
	})
}

func TestManager_CurrentUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   any
		wantID  int64
		wantOK  bool
		wantErr bool
	}{
		{name: "set", value: "15", wantID: 15, wantOK: true},
		{name: "unset", value: nil},
		{name: "garbage", value: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := &rlstest.DB{
				OnQueryRow: func(string, []any) pgx.Row { return rlstest.ValuesRow(tt.value) },
			}
			mgr := rls.New(db)

			var (
				id  int64
				ok  bool
				err error
			)
			require.NoError(t, mgr.WithOptionalTenantTx(context.Background(), nil, func(ctx context.Context, tx pgx.Tx) error {
				id, ok, err = mgr.CurrentUserID(ctx, tx)
				return nil
			}))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestManager_InvalidOptionsPanic(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { rls.New(&rlstest.DB{}, rls.WithSetting("no_namespace")) })
	assert.Panics(t, func() { rls.New(&rlstest.DB{}, rls.WithSetting("app.user'; DROP")) })
	assert.Panics(t, func() { rls.New(&rlstest.DB{}, rls.WithLocalRole("role; drop")) })
	assert.NotPanics(t, func() { rls.New(&rlstest.DB{}, rls.WithSetting("app.current_tenant")) })
}

func TestManager_Metrics(t *testing.T) {
	t.Parallel()

	metrics := rls.NewMetrics(nil)
	mgr := rls.New(&rlstest.DB{}, rls.WithMetrics(metrics))
	ctx := context.Background()

	_ = mgr.WithTenantTx(ctx, 1, func(context.Context, pgx.Tx) error { return nil })
	_ = mgr.WithTenantTx(ctx, 1, func(context.Context, pgx.Tx) error { return errors.New("fail") })
	_ = mgr.WithTenantTx(ctx, 0, func(context.Context, pgx.Tx) error { return nil })
	_ = mgr.WithOptionalTenantTx(ctx, nil, func(context.Context, pgx.Tx) error { return nil })

	tx := metrics.Transactions()
	assert.Equal(t, 1.0, testutil.ToFloat64(tx.WithLabelValues("tenant", "committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tx.WithLabelValues("tenant", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tx.WithLabelValues("tenant", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tx.WithLabelValues("anonymous", "committed")))
}
