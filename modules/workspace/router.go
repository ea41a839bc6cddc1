package workspace

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/membership"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// MembershipService lists memberships and switches the active organization.
type MembershipService interface {
	ListMemberships(ctx context.Context, userID int64) ([]membership.Membership, error)
	SetActiveOrganization(ctx context.Context, userID int64, orgID string) error
}

// RouterOptions configures which parts of the workspace API are mounted.
// Each service is optional and its routes are only mounted if provided.
type RouterOptions struct {
	Projects    ProjectStore
	Memberships MembershipService
	Logger      *slog.Logger
}

// Router creates the workspace API. It expects tenant.Middleware to run
// before it.
//
//	r.Mount("/api", workspace.Router(workspace.RouterOptions{
//	    Projects:    workspace.NewPostgresProjects(manager),
//	    Memberships: membership.NewStore(manager),
//	    Logger:      log,
//	}))
//
// Project routes require an active organization. Membership routes only
// require a user, so someone without an active organization can still pick
// one.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("workspace"))
	h := &handlers{projects: opts.Projects, memberships: opts.Memberships, onError: errorHandler(log)}
	gate := tenant.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
		tenant.WriteError(w, err)
	})

	r := chi.NewRouter()

	if opts.Projects != nil {
		r.Group(func(r chi.Router) {
			r.Use(tenant.RequireTenant(gate))
			r.Get("/projects", h.listProjects())
			r.Get("/projects/{id}", h.getProject())
		})
	}

	if opts.Memberships != nil {
		r.Group(func(r chi.Router) {
			r.Use(tenant.RequireUser(gate))
			r.Get("/memberships", h.listMemberships())
			r.Post("/organizations/active", h.switchOrganization())
		})
	}

	return r
}
