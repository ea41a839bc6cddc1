package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tenantkit/db"
	"github.com/dmitrymomot/tenantkit/internal/rlsassets"
	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

var (
	errRLSIncomplete   = errors.New("row level security is incomplete")
	errIsolationFailed = errors.New("isolation test failed")
)

// auditor is the part of *rls.Auditor the commands use.
type auditor interface {
	VerifyEnabled(ctx context.Context) (rls.Report, error)
	ApplySQL(ctx context.Context, script string) (rls.ApplyResult, error)
	TestIsolation(ctx context.Context, userID int64) rls.Diagnostic
}

type cliConfig struct {
	PG  pg.Config
	RLS rls.Config
}

type cli struct {
	out        io.Writer
	format     string
	envFiles   []string
	policyFile string
	verbose    bool

	open    func(ctx context.Context) (auditor, func(), error)
	migrate func(ctx context.Context) error
}

func newCLI(out io.Writer) *cli {
	c := &cli{out: out}
	c.open = c.openAuditor
	c.migrate = c.migrateDatabase
	return c
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "rlsctl",
		Short: "Inspect and install PostgreSQL row level security for tenantkit",
		Long: `rlsctl audits the row level security setup of the tenant tables,
applies the policy script idempotently, runs the isolation probe for a user
and applies schema migrations.

Connection settings come from the environment (PG_CONN_URL, RLS_*), optionally
loaded from dotenv files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch c.format {
			case "text", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (use text, json or yaml)", c.format)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.format, "output", "o", "text", "Output format: text, json, yaml")
	flags.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "Dotenv files to load before reading the environment")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log progress to stderr")

	root.AddCommand(
		newVerifyCmd(c),
		newApplyCmd(c),
		newTestIsolationCmd(c),
		newMigrateCmd(c),
	)
	return root
}

func (c *cli) loadConfig() (cliConfig, error) {
	var cfg cliConfig
	if err := config.Load(&cfg.PG, config.WithEnvFiles(c.envFiles...)); err != nil {
		return cliConfig{}, err
	}
	if err := config.Load(&cfg.RLS, config.WithEnvFiles(c.envFiles...)); err != nil {
		return cliConfig{}, err
	}
	if err := cfg.RLS.Validate(); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

func (c *cli) logger() *slog.Logger {
	if !c.verbose {
		return logger.Discard()
	}
	return logger.New(logger.WithFormat(logger.FormatText), logger.WithLevel(slog.LevelDebug))
}

func (c *cli) connect(ctx context.Context) (*pgxpool.Pool, cliConfig, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cliConfig{}, err
	}
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return nil, cliConfig{}, err
	}
	return pool, cfg, nil
}

func (c *cli) openAuditor(ctx context.Context) (auditor, func(), error) {
	pool, cfg, err := c.connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	manifest, _, err := rlsassets.Manifest(cfg.RLS.TablesFile)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if cfg.RLS.Schema != "" {
		manifest.Schema = cfg.RLS.Schema
		if err := manifest.Validate(); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	if c.policyFile == "" {
		c.policyFile = cfg.RLS.PolicyFile
	}

	log := c.logger()
	manager := rls.New(pool, append(cfg.RLS.ManagerOptions(), rls.WithLogger(log))...)
	return rls.NewAuditor(manager, rls.WithManifest(manifest), rls.WithAuditLogger(log)), pool.Close, nil
}

func (c *cli) migrateDatabase(ctx context.Context) error {
	pool, cfg, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	return pg.Migrate(ctx, pool, db.Migrations(), cfg.PG, c.logger())
}
