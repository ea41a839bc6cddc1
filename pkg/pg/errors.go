package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, use PG_CONN_URL env var")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsNotProvided    = errors.New("migrations filesystem not provided")
)

// SQLSTATE codes the isolation layer branches on.
const (
	codeUniqueViolation       = "23505"
	codeForeignKeyViolation   = "23503"
	codeInsufficientPrivilege = "42501"
	codeDuplicateObject       = "42710"
	codeDuplicateTable        = "42P07"
	codeDuplicateFunction     = "42723"
)

// IsNotFoundError detects pgx.ErrNoRows for consistent "not found" handling across queries.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows)
}

// IsTxClosedError detects attempts to use closed transactions.
func IsTxClosedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrTxClosed)
}

// IsDuplicateKeyError detects unique constraint violations (SQLSTATE 23505).
// The partial index on active memberships reports through this code.
func IsDuplicateKeyError(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsForeignKeyViolationError detects referential integrity violations (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// IsInsufficientPrivilegeError detects SQLSTATE 42501, which is also what
// PostgreSQL raises when a row fails an RLS WITH CHECK expression.
func IsInsufficientPrivilegeError(err error) bool {
	return hasCode(err, codeInsufficientPrivilege)
}

// IsDuplicateObjectError reports whether a DDL statement failed because the
// object (policy, role, table, function) already exists.
func IsDuplicateObjectError(err error) bool {
	return hasCode(err, codeDuplicateObject, codeDuplicateTable, codeDuplicateFunction)
}

func hasCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	for _, code := range codes {
		if pgErr.Code == code {
			return true
		}
	}
	return false
}
