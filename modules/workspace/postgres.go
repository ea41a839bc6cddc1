package workspace

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

const projectColumns = "id, organization_id::text, name, created_at"

// PostgresProjects reads projects inside tenant transactions, so row level
// security limits results to the user's active organization.
type PostgresProjects struct {
	tx *rls.Manager
}

// NewPostgresProjects returns a ProjectStore backed by PostgreSQL.
func NewPostgresProjects(tx *rls.Manager) *PostgresProjects {
	return &PostgresProjects{tx: tx}
}

func (s *PostgresProjects) ListProjects(ctx context.Context, userID int64) ([]Project, error) {
	var out []Project
	err := s.tx.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY id")
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, scanProject)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *PostgresProjects) GetProject(ctx context.Context, userID, id int64) (Project, error) {
	var p Project
	err := s.tx.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id)
		if err != nil {
			return err
		}
		p, err = pgx.CollectExactlyOneRow(rows, scanProject)
		return err
	})
	switch {
	case pg.IsNotFoundError(err):
		return Project{}, ErrProjectNotFound
	case err != nil:
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func scanProject(row pgx.CollectableRow) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.CreatedAt)
	return p, err
}

var _ ProjectStore = (*PostgresProjects)(nil)
