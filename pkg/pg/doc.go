// Package pg bootstraps the PostgreSQL side of the isolation layer on top of
// pgx/v5: a retrying pool constructor, goose migrations served from an fs.FS,
// a readiness probe and helpers that classify *pgconn.PgError values.
//
// The classifiers matter beyond convenience. The RLS auditor treats
// IsDuplicateObjectError as "already applied", and IsInsufficientPrivilegeError
// is how a write rejected by a row-level security WITH CHECK clause surfaces.
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, db.Migrations(), cfg, log); err != nil {
//		return err
//	}
package pg
