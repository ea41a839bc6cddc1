package rls

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
)

// Serializes concurrent policy applications from several replicas.
var policyLockID = int64(crc32.ChecksumIEEE([]byte("tenantkit-rls-policies")))

// TableStatus is the RLS state of one tenant-scoped table.
type TableStatus struct {
	Name       string `json:"name"`
	RLSEnabled bool   `json:"rls_enabled"`
	Forced     bool   `json:"forced"`
}

// Report is the outcome of VerifyEnabled.
type Report struct {
	Schema string        `json:"schema"`
	Tables []TableStatus `json:"tables"`
	// Missing lists manifest tables that do not exist.
	Missing []string `json:"missing"`
	// Unprotected lists existing tenant tables without RLS enabled.
	Unprotected []string `json:"unprotected"`
	// NotForced lists protected tables whose owner still bypasses policies.
	NotForced []string `json:"not_forced"`
}

// OK reports whether every tenant-scoped table exists and has RLS enabled.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Unprotected) == 0
}

// ApplyResult counts statements of a policy script.
type ApplyResult struct {
	Applied int `json:"applied"`
	// Skipped statements failed because their object already exists.
	Skipped int `json:"skipped"`
}

// Diagnostic is the outcome of an isolation probe.
type Diagnostic struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Auditor inspects and installs the RLS configuration.
type Auditor struct {
	manager  *Manager
	manifest Manifest
	logger   *slog.Logger
	metrics  *Metrics
}

// AuditorOption configures an Auditor.
type AuditorOption func(*Auditor)

func WithManifest(m Manifest) AuditorOption {
	return func(a *Auditor) { a.manifest = m }
}

func WithAuditLogger(l *slog.Logger) AuditorOption {
	return func(a *Auditor) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithAuditMetrics(m *Metrics) AuditorOption {
	return func(a *Auditor) { a.metrics = m }
}

// NewAuditor creates an Auditor that runs its queries through manager.
func NewAuditor(manager *Manager, opts ...AuditorOption) *Auditor {
	a := &Auditor{
		manager:  manager,
		manifest: DefaultManifest(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// catalogTable is one base table of the audited schema.
type catalogTable struct {
	Name          string
	RLSEnabled    bool
	Forced        bool
	HasTenantFKey bool
}

const catalogQuery = `
SELECT c.relname,
       c.relrowsecurity,
       c.relforcerowsecurity,
       EXISTS (
           SELECT 1 FROM pg_attribute a
           WHERE a.attrelid = c.oid
             AND a.attname = 'organization_id'
             AND a.attnum > 0
             AND NOT a.attisdropped
       )
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1
  AND c.relkind IN ('r', 'p')
ORDER BY c.relname`

// VerifyEnabled checks every tenant-scoped table. Tenant-scoped means listed in
// the manifest or carrying an organization_id column.
func (a *Auditor) VerifyEnabled(ctx context.Context) (Report, error) {
	var catalog []catalogTable
	err := a.manager.plainTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, catalogQuery, a.manifest.Schema)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t catalogTable
			if err := rows.Scan(&t.Name, &t.RLSEnabled, &t.Forced, &t.HasTenantFKey); err != nil {
				return err
			}
			catalog = append(catalog, t)
		}
		return rows.Err()
	})
	if err != nil {
		return Report{}, errors.Join(ErrCatalogQuery, err)
	}

	report := buildReport(a.manifest.Schema, a.manifest.Tables, catalog)
	a.metrics.observeAudit(len(report.Unprotected))

	for _, name := range report.Unprotected {
		a.logger.ErrorContext(ctx, "tenant table without row level security", logger.Table(name), logger.Alert())
	}
	for _, name := range report.Missing {
		a.logger.WarnContext(ctx, "manifest table does not exist", logger.Table(name))
	}
	return report, nil
}

func buildReport(schema string, manifest []string, catalog []catalogTable) Report {
	report := Report{
		Schema:      schema,
		Tables:      []TableStatus{},
		Missing:     []string{},
		Unprotected: []string{},
		NotForced:   []string{},
	}

	existing := make(map[string]bool, len(catalog))
	for _, t := range catalog {
		existing[t.Name] = true
		if !t.HasTenantFKey && !slices.Contains(manifest, t.Name) {
			continue
		}

		report.Tables = append(report.Tables, TableStatus{Name: t.Name, RLSEnabled: t.RLSEnabled, Forced: t.Forced})
		switch {
		case !t.RLSEnabled:
			report.Unprotected = append(report.Unprotected, t.Name)
		case !t.Forced:
			report.NotForced = append(report.NotForced, t.Name)
		}
	}

	for _, name := range manifest {
		if !existing[name] && !slices.Contains(report.Missing, name) {
			report.Missing = append(report.Missing, name)
		}
	}
	return report
}

// ApplyPolicies applies the SQL script at path. See ApplySQL.
func (a *Auditor) ApplyPolicies(ctx context.Context, path string) (ApplyResult, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return ApplyResult{}, errors.Join(ErrPolicyFileRead, err)
	}
	return a.ApplySQL(ctx, string(script))
}

// ApplySQL runs every statement of script in a single transaction holding an
// advisory lock. Each statement runs in its own savepoint; a statement that
// fails because its object already exists is rolled back to the savepoint and
// counted as skipped, so applying the same script twice succeeds. Any other
// failure rolls everything back. Occurrences of SettingPlaceholder are replaced
// with the manager's security variable first.
func (a *Auditor) ApplySQL(ctx context.Context, script string) (ApplyResult, error) {
	stmts := SplitStatements(strings.ReplaceAll(script, SettingPlaceholder, a.manager.Setting()))

	var res ApplyResult
	err := a.manager.plainTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", policyLockID); err != nil {
			return fmt.Errorf("acquire policy lock: %w", err)
		}

		for i, stmt := range stmts {
			applied, err := a.applyStatement(ctx, tx, stmt)
			if err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
			if applied {
				res.Applied++
			} else {
				res.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return ApplyResult{}, errors.Join(ErrApplyPolicies, err)
	}

	a.logger.InfoContext(ctx, "rls policies applied",
		slog.Int("applied", res.Applied),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (a *Auditor) applyStatement(ctx context.Context, tx pgx.Tx, stmt string) (bool, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return false, err
	}

	if _, err := sp.Exec(ctx, stmt); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return false, errors.Join(err, rbErr)
		}
		if pg.IsDuplicateObjectError(err) {
			a.logger.DebugContext(ctx, "rls statement already applied", logger.Error(err))
			return false, nil
		}
		return false, err
	}

	if err := sp.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// TestIsolation opens a tenant transaction for userID and checks that no row
// of the probe table belonging to another organization is visible. It never
// returns an error; failures are reported in the Diagnostic.
func (a *Auditor) TestIsolation(ctx context.Context, userID int64) Diagnostic {
	if userID <= 0 {
		return Diagnostic{Success: false, Message: fmt.Sprintf("invalid user id %d", userID)}
	}

	probe := pgx.Identifier{a.manifest.Schema, a.manifest.ProbeTable}.Sanitize()

	var diag Diagnostic
	err := a.manager.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
		bound, ok, err := a.manager.CurrentUserID(ctx, tx)
		if err != nil {
			return err
		}
		if !ok || bound != userID {
			diag = Diagnostic{Message: fmt.Sprintf("security context not visible: %s is not set to %d", a.manager.Setting(), userID)}
			return nil
		}

		var seen *int64
		if err := tx.QueryRow(ctx, "SELECT app_current_user_id()").Scan(&seen); err != nil {
			return err
		}
		if seen == nil || *seen != userID {
			diag = Diagnostic{Message: fmt.Sprintf(
				"policies do not read %s: app_current_user_id() does not return %d, re-apply the policy file",
				a.manager.Setting(), userID,
			)}
			return nil
		}

		var orgID string
		err = tx.QueryRow(ctx,
			"SELECT organization_id::text FROM memberships WHERE user_id = $1 AND is_active ORDER BY id LIMIT 1",
			userID,
		).Scan(&orgID)
		if pg.IsNotFoundError(err) {
			diag = Diagnostic{Message: fmt.Sprintf("user %d has no active organization", userID)}
			return nil
		}
		if err != nil {
			return err
		}

		var visible, foreign int64
		err = tx.QueryRow(ctx,
			"SELECT count(*), count(*) FILTER (WHERE organization_id IS NOT NULL AND organization_id::text <> $1) FROM "+probe,
			orgID,
		).Scan(&visible, &foreign)
		if err != nil {
			return err
		}

		if foreign > 0 {
			diag = Diagnostic{Message: fmt.Sprintf(
				"isolation breach: %d of %d visible %s rows belong to other organizations",
				foreign, visible, a.manifest.ProbeTable,
			)}
			return nil
		}
		diag = Diagnostic{Success: true, Message: fmt.Sprintf(
			"isolation verified for organization %s: %d %s rows visible, none from other organizations",
			orgID, visible, a.manifest.ProbeTable,
		)}
		return nil
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "isolation test failed", logger.UserID(userID), logger.Error(err))
		return Diagnostic{Message: fmt.Sprintf("isolation test could not run: %v", err)}
	}

	if !diag.Success {
		a.logger.WarnContext(ctx, "isolation test did not pass", logger.UserID(userID), slog.String("reason", diag.Message))
	}
	return diag
}
