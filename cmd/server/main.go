package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/tenantkit/db"
	"github.com/dmitrymomot/tenantkit/internal/rlsassets"
	"github.com/dmitrymomot/tenantkit/modules/admin"
	"github.com/dmitrymomot/tenantkit/modules/workspace"
	"github.com/dmitrymomot/tenantkit/pkg/clientip"
	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/membership"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/requestid"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
	"github.com/dmitrymomot/tenantkit/pkg/session"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, cfg.App.Name),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg serverConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.App.Migrate {
		if err := pg.Migrate(ctx, pool, db.Migrations(), cfg.PG, log); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rlsMetrics := rls.NewMetrics(reg)

	manager := rls.New(pool, append(cfg.RLS.ManagerOptions(),
		rls.WithLogger(log),
		rls.WithMetrics(rlsMetrics),
	)...)

	manifest, source, err := rlsassets.Manifest(cfg.RLS.TablesFile)
	if err != nil {
		return err
	}
	if cfg.RLS.Schema != "" {
		manifest.Schema = cfg.RLS.Schema
		if err := manifest.Validate(); err != nil {
			return err
		}
	}
	auditor := rls.NewAuditor(manager,
		rls.WithManifest(manifest),
		rls.WithAuditLogger(log),
		rls.WithAuditMetrics(rlsMetrics),
	)
	log.InfoContext(ctx, "rls manifest loaded", slog.String("source", source), slog.Int("tables", len(manifest.Tables)))

	if cfg.App.VerifyRLS {
		verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		report, err := auditor.VerifyEnabled(verifyCtx)
		cancel()
		switch {
		case err != nil:
			log.ErrorContext(ctx, "rls verification failed", logger.Error(err))
		case !report.OK():
			log.ErrorContext(ctx, "tenant tables without row level security",
				logger.Alert(),
				slog.Any("unprotected", report.Unprotected),
				slog.Any("missing", report.Missing),
			)
		}
	}

	ready := []httpserver.Check{{Name: "postgres", Probe: pg.Healthcheck(pool)}}

	var sessions session.Store
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.ErrorContext(ctx, "failed to close redis client", logger.Error(err))
			}
		}()
		sessions = session.NewRedisStore(client, cfg.Session.RedisPrefix)
		ready = append(ready, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)})
	} else {
		mem := session.NewMemoryStore(time.Minute)
		defer func() { _ = mem.Close() }()
		sessions = mem
		log.WarnContext(ctx, "REDIS_URL not set, sessions are kept in memory")
	}

	identities := identity.NewResolver(identity.NewPostgresUserStore(manager),
		identity.WithParser(cfg.Identity.Parser()),
		identity.WithLogger(log),
	)
	memberships := membership.NewStore(manager,
		membership.WithLogger(log),
		membership.WithMetrics(membership.NewMetrics(reg)),
	)

	router := newRouter(routerDeps{
		log:       log,
		clientIPs: clientip.New(cfg.App.TrustedIPHeaders...),
		sessions:  sessions,
		tokens:    session.SourceFromConfig(cfg.Session),
		tenants:   tenant.NewResolver(identities, memberships, tenant.WithLogger(log)),
		workspace: workspace.RouterOptions{
			Projects:    workspace.NewPostgresProjects(manager),
			Memberships: memberships,
			Logger:      log,
		},
		admin: admin.RouterOptions{
			Token:   cfg.App.AdminToken,
			Auditor: auditor,
			Logger:  log,
		},
		ready:   ready,
		metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	if cfg.App.AdminToken == "" {
		log.WarnContext(ctx, "ADMIN_TOKEN not set, admin routes are disabled")
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
