// Package pgtest provisions PostgreSQL databases for integration tests.
//
// The server comes from TEST_DATABASE_URL when set, otherwise from a
// testcontainers postgres container shared by every test of the package.
// Each call to New creates a fresh database, applies the embedded migrations
// and, unless disabled, the RLS policies. Tests are skipped when neither a URL
// nor a healthy Docker provider is available, or with -short.
//
// The connecting role must be a superuser: fixtures are inserted directly,
// bypassing RLS, and tenant transactions switch to AppRole.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dmitrymomot/tenantkit/db"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

// AppRole is the unprivileged role created by the policy script.
const AppRole = "tenant_app"

const image = "postgres:16-alpine"

var (
	serverOnce sync.Once
	serverURL  string
	serverErr  error

	// goose keeps its configuration in package globals.
	migrateMu sync.Mutex
)

type options struct {
	policies bool
}

// Option configures New.
type Option func(*options)

// WithoutPolicies leaves RLS unconfigured so tests can apply it themselves.
func WithoutPolicies() Option {
	return func(o *options) { o.policies = false }
}

// New returns a pool connected to a fresh, migrated database.
func New(t *testing.T, opts ...Option) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	o := options{policies: true}
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()
	base := server(t)

	admin, err := pgx.Connect(ctx, base)
	require.NoError(t, err)
	defer admin.Close(ctx)

	name := "tenantkit_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(base)
	require.NoError(t, err)
	cfg.ConnConfig.Database = name
	cfg.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		conn, err := pgx.Connect(context.Background(), base)
		if err != nil {
			return
		}
		defer conn.Close(context.Background())
		_, _ = conn.Exec(context.Background(), "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)")
	})

	migrateMu.Lock()
	err = pg.Migrate(ctx, pool, db.Migrations(), pg.Config{MigrationsTable: "schema_migrations"}, logger.Discard())
	if err == nil && o.policies {
		_, err = rls.NewAuditor(rls.New(pool)).ApplySQL(ctx, db.Policies())
	}
	migrateMu.Unlock()
	require.NoError(t, err)

	return pool
}

// Manager returns an rls.Manager that runs tenant transactions as AppRole, so
// policies apply although the pool connects as a superuser.
func Manager(pool *pgxpool.Pool, opts ...rls.Option) *rls.Manager {
	return rls.New(pool, append([]rls.Option{rls.WithLocalRole(AppRole)}, opts...)...)
}

func server(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}

	serverOnce.Do(func() {
		serverURL, serverErr = startContainer()
	})
	if serverErr != nil {
		t.Skipf("postgres container unavailable: %v", serverErr)
	}
	return serverURL
}

// The container outlives individual tests; the testcontainers reaper removes
// it when the test binary exits.
func startContainer() (url string, err error) {
	defer func() {
		// testcontainers panics when no Docker host can be found.
		if r := recover(); r != nil {
			err = fmt.Errorf("docker provider: %v", r)
		}
	}()

	ctx := context.Background()
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return "", err
	}
	defer provider.Close()
	if err := provider.Health(ctx); err != nil {
		return "", err
	}

	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("tenantkit"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return "", err
	}
	return ctr.ConnectionString(ctx, "sslmode=disable")
}
