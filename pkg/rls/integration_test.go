package rls_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/db"
	"github.com/dmitrymomot/tenantkit/internal/pgtest"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

func TestIntegration_PoliciesApplyIdempotently(t *testing.T) {
	t.Parallel()

	pool := pgtest.New(t, pgtest.WithoutPolicies())
	auditor := rls.NewAuditor(rls.New(pool))
	ctx := context.Background()

	report, err := auditor.VerifyEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.ElementsMatch(t, []string{"boards", "memberships", "projects"}, report.Unprotected)

	first, err := auditor.ApplySQL(ctx, db.Policies())
	require.NoError(t, err)
	assert.Zero(t, first.Skipped)

	second, err := auditor.ApplySQL(ctx, db.Policies())
	require.NoError(t, err)
	assert.Equal(t, 3, second.Skipped, "the three CREATE POLICY statements already exist")
	assert.Equal(t, first.Applied+first.Skipped, second.Applied+second.Skipped)

	report, err = auditor.VerifyEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, report.NotForced)
}

func TestIntegration_TenantIsolation(t *testing.T) {
	t.Parallel()

	pool := pgtest.New(t)
	ctx := context.Background()

	alice := pgtest.CreateUser(t, pool, "")
	bob := pgtest.CreateUser(t, pool, "")
	orgA := pgtest.CreateOrganization(t, pool, "A")
	orgB := pgtest.CreateOrganization(t, pool, "B")
	pgtest.CreateMembership(t, pool, alice, orgA, true)
	pgtest.CreateMembership(t, pool, bob, orgB, true)
	pgtest.CreateProject(t, pool, orgA, "alpha")
	pgtest.CreateProject(t, pool, orgB, "beta")
	pgtest.CreateProject(t, pool, "", "legacy")

	mgr := pgtest.Manager(pool)

	visible := func(userID int64) []string {
		var names []string
		err := mgr.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
			rows, err := tx.Query(ctx, "SELECT name FROM projects ORDER BY name")
			if err != nil {
				return err
			}
			names, err = pgx.CollectRows(rows, pgx.RowTo[string])
			return err
		})
		require.NoError(t, err)
		return names
	}

	assert.Equal(t, []string{"alpha", "legacy"}, visible(alice))
	assert.Equal(t, []string{"beta", "legacy"}, visible(bob))

	t.Run("writes into another organization are rejected", func(t *testing.T) {
		err := mgr.WithTenantTx(ctx, alice, func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "INSERT INTO projects (organization_id, name) VALUES ($1, 'intrusion')", orgB)
			return err
		})
		assert.True(t, pg.IsInsufficientPrivilegeError(err), "got %v", err)
	})

	t.Run("cancellation mid-transaction leaves no partial write", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		err := mgr.WithTenantTx(cctx, alice, func(ctx context.Context, tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, "INSERT INTO projects (organization_id, name) VALUES ($1, 'abandoned')", orgA); err != nil {
				return err
			}
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)

		var n int
		require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM projects WHERE name = 'abandoned'").Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("the variable does not outlive the transaction", func(t *testing.T) {
		require.NoError(t, mgr.WithTenantTx(ctx, alice, func(context.Context, pgx.Tx) error { return nil }))

		err := mgr.WithOptionalTenantTx(ctx, nil, func(ctx context.Context, tx pgx.Tx) error {
			_, ok, err := mgr.CurrentUserID(ctx, tx)
			require.NoError(t, err)
			assert.False(t, ok)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("isolation diagnostic", func(t *testing.T) {
		auditor := rls.NewAuditor(mgr)

		diag := auditor.TestIsolation(ctx, alice)
		assert.True(t, diag.Success, diag.Message)

		loner := pgtest.CreateUser(t, pool, "")
		diag = auditor.TestIsolation(ctx, loner)
		assert.False(t, diag.Success)
		assert.Contains(t, diag.Message, "no active organization")
	})

	t.Run("owner connection without the local role bypasses policies", func(t *testing.T) {
		diag := rls.NewAuditor(rls.New(pool)).TestIsolation(ctx, alice)
		assert.False(t, diag.Success)
		assert.Contains(t, diag.Message, "isolation breach")
	})
}

func TestIntegration_CustomSetting(t *testing.T) {
	t.Parallel()

	pool := pgtest.New(t, pgtest.WithoutPolicies())
	ctx := context.Background()

	mgr := pgtest.Manager(pool, rls.WithSetting("app.uid"))
	_, err := rls.NewAuditor(mgr).ApplySQL(ctx, db.Policies())
	require.NoError(t, err)

	alice := pgtest.CreateUser(t, pool, "")
	orgA := pgtest.CreateOrganization(t, pool, "A")
	orgB := pgtest.CreateOrganization(t, pool, "B")
	pgtest.CreateMembership(t, pool, alice, orgA, true)
	pgtest.CreateProject(t, pool, orgA, "alpha")
	pgtest.CreateProject(t, pool, orgB, "beta")

	var names []string
	err = mgr.WithTenantTx(ctx, alice, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, "SELECT name FROM projects ORDER BY name")
		if err != nil {
			return err
		}
		names, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names)

	diag := rls.NewAuditor(mgr).TestIsolation(ctx, alice)
	assert.True(t, diag.Success, diag.Message)

	t.Run("manager and policies disagree on the name", func(t *testing.T) {
		other := pgtest.Manager(pool)
		diag := rls.NewAuditor(other).TestIsolation(ctx, alice)
		assert.False(t, diag.Success)
		assert.Contains(t, diag.Message, "policies do not read app.current_user_id")
	})
}
