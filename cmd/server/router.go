package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantkit/modules/admin"
	"github.com/dmitrymomot/tenantkit/modules/workspace"
	"github.com/dmitrymomot/tenantkit/pkg/clientip"
	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/requestid"
	"github.com/dmitrymomot/tenantkit/pkg/session"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

type routerDeps struct {
	log       *slog.Logger
	clientIPs clientip.Resolver
	sessions  session.Store
	tokens    session.TokenSource
	tenants   *tenant.Resolver
	workspace workspace.RouterOptions
	admin     admin.RouterOptions
	ready     []httpserver.Check
	metrics   http.Handler
}

// newRouter assembles the request pipeline: request id and client ip, then
// session, then tenant context for the API. Health, metrics and admin routes never resolve
// a tenant.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware(d.clientIPs))

	r.Get("/health/live", httpserver.HealthCheckHandler(d.log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(d.log, d.ready...))
	if d.metrics != nil {
		r.Handle("/metrics", d.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(d.sessions, d.tokens, d.log))
		r.Use(tenant.Middleware(session.IdentitySource(), d.tenants, tenant.WithLogger(d.log)))
		r.Mount("/api", workspace.Router(d.workspace))
	})

	r.Mount("/admin", admin.Router(d.admin))

	return r
}
