package pgtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateUser inserts a user. An empty externalID stores NULL.
func CreateUser(t *testing.T, pool *pgxpool.Pool, externalID string) int64 {
	t.Helper()

	var ext *string
	if externalID != "" {
		ext = &externalID
	}

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO users (external_id, email) VALUES ($1, $2) RETURNING id",
		ext, uuid.NewString()+"@example.com",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateOrganization inserts an organization and returns its id.
func CreateOrganization(t *testing.T, pool *pgxpool.Pool, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), "INSERT INTO organizations (id, name) VALUES ($1, $2)", id, name)
	require.NoError(t, err)
	return id
}

// CreateMembership links a user to an organization.
func CreateMembership(t *testing.T, pool *pgxpool.Pool, userID int64, orgID string, active bool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO memberships (user_id, organization_id, role, is_active) VALUES ($1, $2, 'member', $3) RETURNING id",
		userID, orgID, active,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateProject inserts a project. An empty orgID creates a legacy row.
func CreateProject(t *testing.T, pool *pgxpool.Pool, orgID, name string) int64 {
	t.Helper()

	var org *string
	if orgID != "" {
		org = &orgID
	}

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO projects (organization_id, name) VALUES ($1, $2) RETURNING id",
		org, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// ActiveMemberships counts the active memberships of a user, bypassing RLS.
func ActiveMemberships(t *testing.T, pool *pgxpool.Pool, userID int64) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		"SELECT count(*) FROM memberships WHERE user_id = $1 AND is_active", userID,
	).Scan(&n)
	require.NoError(t, err)
	return n
}
