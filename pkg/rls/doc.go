// Package rls binds database transactions to a tenant security context and
// audits the PostgreSQL row level security configuration that relies on it.
//
// A Manager opens transactions whose first statement is
//
//	SELECT set_config('app.current_user_id', $1, true)
//
// The third argument makes the setting transaction-local, so it is discarded at
// commit or rollback and can never leak to another request through the pool.
// RLS policies read the value with current_setting(name, true).
//
//	mgr := rls.New(pool, rls.WithLogger(log))
//	err := mgr.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "UPDATE projects SET name = $1 WHERE id = $2", name, id)
//		return err
//	})
//
// A user id that is not positive is rejected with ErrInvalidTenantIdentity
// before any database work. WithOptionalTenantTx exists for the few queries
// that legitimately run before a user is known, such as identity lookups.
//
// The Auditor verifies that every tenant-scoped table has RLS enabled, applies
// the external policy file idempotently and runs an isolation probe for a user.
package rls
