package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

// InvariantViolationHook is called when a user has several active memberships.
// chosen is the organization the lookup returned.
type InvariantViolationHook func(ctx context.Context, userID int64, chosen string)

// Store reads and switches active memberships.
type Store struct {
	tx      *rls.Manager
	logger  *slog.Logger
	metrics *Metrics
	onViol  InvariantViolationHook
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithInvariantViolationHook(h InvariantViolationHook) Option {
	return func(s *Store) { s.onViol = h }
}

// NewStore creates a Store running its queries through tx.
func NewStore(tx *rls.Manager, opts ...Option) *Store {
	s := &Store{
		tx:     tx,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveOrganization returns the active organization of userID. ok is false
// when the user has none. If the single-active invariant is broken the
// membership with the lowest id wins and the violation is reported.
func (s *Store) ActiveOrganization(ctx context.Context, userID int64) (string, bool, error) {
	type row struct {
		id    int64
		orgID string
	}
	var found []row

	err := s.tx.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			"SELECT id, organization_id::text FROM memberships WHERE user_id = $1 AND is_active ORDER BY id LIMIT 2",
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var r row
			if err := rows.Scan(&r.id, &r.orgID); err != nil {
				return err
			}
			found = append(found, r)
		}
		return rows.Err()
	})
	if err != nil {
		return "", false, fmt.Errorf("lookup active organization: %w", err)
	}

	switch len(found) {
	case 0:
		return "", false, nil
	case 1:
		return found[0].orgID, true, nil
	}

	chosen := found[0].orgID
	s.logger.ErrorContext(ctx, "user has more than one active organization",
		logger.UserID(userID),
		logger.OrganizationID(chosen),
		logger.Error(ErrInvariantViolation),
		logger.Alert(),
	)
	s.metrics.observeViolation()
	if s.onViol != nil {
		s.onViol(ctx, userID, chosen)
	}
	return chosen, true, nil
}

// SetActiveOrganization makes orgID the only active organization of userID.
// All of the user's memberships are row-locked first, so concurrent switches
// for the same user run one after another and always leave exactly one active
// membership. If the user is not a member of orgID nothing changes and
// ErrMembershipNotFound is returned.
func (s *Store) SetActiveOrganization(ctx context.Context, userID int64, orgID string) error {
	err := s.tx.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			"SELECT organization_id::text FROM memberships WHERE user_id = $1 ORDER BY id FOR UPDATE",
			userID,
		)
		if err != nil {
			return err
		}
		orgs, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		member := false
		for _, o := range orgs {
			if o == orgID {
				member = true
				break
			}
		}
		if !member {
			return ErrMembershipNotFound
		}

		// Deactivate first: the partial unique index on active rows is checked
		// per statement.
		if _, err := tx.Exec(ctx,
			"UPDATE memberships SET is_active = false WHERE user_id = $1 AND is_active AND organization_id::text <> $2",
			userID, orgID,
		); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			"UPDATE memberships SET is_active = true WHERE user_id = $1 AND organization_id::text = $2",
			userID, orgID,
		)
		return err
	})
	if errors.Is(err, ErrMembershipNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("set active organization: %w", err)
	}

	s.logger.InfoContext(ctx, "active organization changed", logger.UserID(userID), logger.OrganizationID(orgID))
	return nil
}

// ListMemberships returns every membership of userID ordered by id.
func (s *Store) ListMemberships(ctx context.Context, userID int64) ([]Membership, error) {
	var out []Membership
	err := s.tx.WithTenantTx(ctx, userID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			"SELECT id, user_id, organization_id::text, role, is_active FROM memberships WHERE user_id = $1 ORDER BY id",
			userID,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Membership, error) {
			var m Membership
			err := row.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.IsActive)
			return m, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return out, nil
}
