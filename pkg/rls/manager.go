package rls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// DefaultSetting is the transaction-local variable RLS policies read.
const DefaultSetting = "app.current_user_id"

// SettingPlaceholder marks the security variable name in policy scripts.
const SettingPlaceholder = "{{setting}}"

var (
	settingPattern    = regexp.MustCompile(`^[a-z_][a-z0-9_]*\.[a-z_][a-z0-9_]*$`)
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Beginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxFunc is the unit of work executed inside a transaction. The context passed
// to it is the one the transaction was opened with.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// Manager opens transactions carrying the tenant security context.
type Manager struct {
	db        Beginner
	setting   string
	localRole string
	txOptions pgx.TxOptions
	logger    *slog.Logger
	metrics   *Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithSetting overrides the variable name. It must look like "namespace.name";
// New panics otherwise because the name is part of every policy.
func WithSetting(name string) Option {
	return func(m *Manager) {
		if err := validateSetting(name); err != nil {
			panic(err)
		}
		m.setting = name
	}
}

// WithLocalRole switches the transaction to role with SET LOCAL ROLE right
// after the security variable is set. Use it when the pool connects as a table
// owner or superuser, which RLS would otherwise not restrict.
func WithLocalRole(role string) Option {
	return func(m *Manager) {
		if err := validateRole(role); err != nil {
			panic(err)
		}
		m.localRole = role
	}
}

func validateSetting(name string) error {
	if !settingPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSetting, name)
	}
	return nil
}

func validateRole(role string) error {
	if !identifierPattern.MatchString(role) {
		return fmt.Errorf("%w: role %q", ErrInvalidIdentifier, role)
	}
	return nil
}

func WithTxOptions(opts pgx.TxOptions) Option {
	return func(m *Manager) { m.txOptions = opts }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// New creates a Manager over db.
func New(db Beginner, opts ...Option) *Manager {
	m := &Manager{
		db:      db,
		setting: DefaultSetting,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Setting returns the name of the transaction-local variable.
func (m *Manager) Setting() string {
	return m.setting
}

// WithTenantTx runs fn in a transaction whose first statement binds userID to
// the security variable. The transaction commits when fn returns nil and rolls
// back on error, panic or context cancellation. userID <= 0 fails with
// ErrInvalidTenantIdentity and the database is never touched.
func (m *Manager) WithTenantTx(ctx context.Context, userID int64, fn TxFunc) error {
	if userID <= 0 {
		m.metrics.observeTx(modeTenant, resultRejected)
		m.logger.WarnContext(ctx, "tenant transaction rejected", logger.UserID(userID))
		return fmt.Errorf("%w: %d", ErrInvalidTenantIdentity, userID)
	}

	err := pgx.BeginTxFunc(ctx, m.db, m.txOptions, func(tx pgx.Tx) error {
		if err := m.bind(ctx, tx, userID); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
	m.observe(modeTenant, err)
	return err
}

// WithOptionalTenantTx is WithTenantTx when userID is non-nil. A nil userID
// runs fn in a plain transaction without the variable, so policies keyed on it
// see no user. A pointer to a non-positive id still fails closed.
func (m *Manager) WithOptionalTenantTx(ctx context.Context, userID *int64, fn TxFunc) error {
	if userID != nil {
		return m.WithTenantTx(ctx, *userID, fn)
	}

	err := m.plainTx(ctx, fn)
	m.observe(modeAnonymous, err)
	return err
}

// CurrentUserID reads the security variable back inside tx. ok is false when
// the variable is unset in this transaction.
func (m *Manager) CurrentUserID(ctx context.Context, tx pgx.Tx) (int64, bool, error) {
	var raw *string
	if err := tx.QueryRow(ctx, "SELECT NULLIF(current_setting($1, true), '')", m.setting).Scan(&raw); err != nil {
		return 0, false, fmt.Errorf("read %s: %w", m.setting, err)
	}
	if raw == nil {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(*raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", m.setting, err)
	}
	return id, true, nil
}

func (m *Manager) plainTx(ctx context.Context, fn TxFunc) error {
	return pgx.BeginTxFunc(ctx, m.db, m.txOptions, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

func (m *Manager) bind(ctx context.Context, tx pgx.Tx, userID int64) error {
	if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", m.setting, strconv.FormatInt(userID, 10)); err != nil {
		return errors.Join(ErrSetTenantContext, err)
	}
	if m.localRole != "" {
		if _, err := tx.Exec(ctx, "SET LOCAL ROLE "+pgx.Identifier{m.localRole}.Sanitize()); err != nil {
			return errors.Join(ErrSetTenantContext, err)
		}
	}
	return nil
}

func (m *Manager) observe(mode string, err error) {
	if err != nil {
		m.metrics.observeTx(mode, resultFailed)
		return
	}
	m.metrics.observeTx(mode, resultCommitted)
}
