package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

// PostgresUserStore looks users up by users.external_id.
type PostgresUserStore struct {
	tx *rls.Manager
}

// NewPostgresUserStore creates a store running its queries through tx.
func NewPostgresUserStore(tx *rls.Manager) *PostgresUserStore {
	return &PostgresUserStore{tx: tx}
}

// UserIDByExternalID runs before any user is known, so it uses a transaction
// without the tenant variable.
func (s *PostgresUserStore) UserIDByExternalID(ctx context.Context, externalID string) (int64, error) {
	var id int64
	err := s.tx.WithOptionalTenantTx(ctx, nil, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, "SELECT id FROM users WHERE external_id = $1", externalID).Scan(&id)
	})
	if pg.IsNotFoundError(err) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find user by external id: %w", err)
	}
	return id, nil
}
