package main

import (
	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/identity"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
	"github.com/dmitrymomot/tenantkit/pkg/session"
)

type appConfig struct {
	Env        string `env:"APP_ENV" envDefault:"development"`
	Name       string `env:"APP_NAME" envDefault:"tenantkit"`
	AdminToken string `env:"ADMIN_TOKEN"`
	// Migrate applies the embedded schema migrations on startup.
	Migrate bool `env:"APP_MIGRATE" envDefault:"true"`
	// VerifyRLS audits the tenant tables on startup and logs an alert when
	// any of them is unprotected.
	VerifyRLS bool `env:"APP_VERIFY_RLS" envDefault:"true"`
	// TrustedIPHeaders lists proxy headers that carry the client address.
	// Leave empty when the service is reachable without a proxy.
	TrustedIPHeaders []string `env:"APP_TRUSTED_IP_HEADERS" envSeparator:","`
}

type serverConfig struct {
	App      appConfig
	HTTP     httpserver.Config
	PG       pg.Config
	Redis    redis.Config
	RLS      rls.Config
	Identity identity.Config
	Session  session.Config
}

func loadConfig() (serverConfig, error) {
	var cfg serverConfig
	for _, load := range []func() error{
		func() error { return config.Load(&cfg.App) },
		func() error { return config.Load(&cfg.HTTP) },
		func() error { return config.Load(&cfg.PG) },
		func() error { return config.Load(&cfg.Redis) },
		func() error {
			if err := config.Load(&cfg.RLS); err != nil {
				return err
			}
			return cfg.RLS.Validate()
		},
		func() error { return config.Load(&cfg.Identity) },
		func() error { return config.Load(&cfg.Session) },
	} {
		if err := load(); err != nil {
			return serverConfig{}, err
		}
	}
	return cfg, nil
}
