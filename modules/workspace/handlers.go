package workspace

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/handler"
	"github.com/dmitrymomot/tenantkit/pkg/binder"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/membership"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

var errNotMember = handler.HTTPError{Code: http.StatusForbidden, Key: "not_a_member"}

type handlers struct {
	projects    ProjectStore
	memberships MembershipService
	onError     handler.ErrorHandler
}

type projectRequest struct {
	ID int64 `path:"id"`
}

type switchRequest struct {
	OrganizationID string `json:"organization_id"`
}

type switchResponse struct {
	OrganizationID string `json:"organization_id"`
}

func (h *handlers) listProjects() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		tc := tenant.MustFromContext(ctx)
		projects, err := h.projects.ListProjects(ctx, tc.UserID)
		if err != nil {
			return handler.Fail(err)
		}
		if projects == nil {
			projects = []Project{}
		}
		return handler.JSON(projects, handler.WithJSONMeta(map[string]any{
			"organization_id": tc.OrganizationID,
			"count":           len(projects),
		}))
	}, handler.WithErrorHandler[struct{}](h.onError))
}

func (h *handlers) getProject() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, req projectRequest) handler.Response {
		if req.ID <= 0 {
			return handler.Fail(handler.ErrNotFound)
		}

		tc := tenant.MustFromContext(ctx)
		project, err := h.projects.GetProject(ctx, tc.UserID, req.ID)
		if err != nil {
			return handler.Fail(err)
		}
		if err := tenant.ValidateAccess(project.OrganizationID).Check(ctx); err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(project)
	},
		handler.WithBinders[projectRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[projectRequest](h.onError),
	)
}

func (h *handlers) listMemberships() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		userID, _ := tenant.UserIDFromContext(ctx)
		list, err := h.memberships.ListMemberships(ctx, userID)
		if err != nil {
			return handler.Fail(err)
		}
		if list == nil {
			list = []membership.Membership{}
		}
		return handler.JSON(list)
	}, handler.WithErrorHandler[struct{}](h.onError))
}

func (h *handlers) switchOrganization() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, req switchRequest) handler.Response {
		orgID, err := uuid.Parse(req.OrganizationID)
		if err != nil {
			return handler.Fail(handler.ErrUnprocessableEntity)
		}

		userID, _ := tenant.UserIDFromContext(ctx)
		if err := h.memberships.SetActiveOrganization(ctx, userID, orgID.String()); err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(switchResponse{OrganizationID: orgID.String()})
	},
		handler.WithBinders[switchRequest](binder.JSON()),
		handler.WithErrorHandler[switchRequest](h.onError),
	)
}

// errorHandler renders tenant errors through tenant.WriteError so every 403 of
// the isolation layer has the same body, and maps domain errors to HTTP errors
// before falling back to the default JSON handler.
func errorHandler(log *slog.Logger) handler.ErrorHandler {
	fallback := handler.NewErrorHandler(log)

	return func(ctx handler.Context, err error) {
		switch {
		case errors.Is(err, tenant.ErrCrossTenantAccess):
			userID, _ := tenant.UserIDFromContext(ctx)
			log.WarnContext(ctx, "cross-tenant access blocked",
				logger.UserID(userID),
				slog.String("path", ctx.Request().URL.Path),
			)
			tenant.WriteError(ctx.ResponseWriter(), err)
		case errors.Is(err, tenant.ErrNoActiveOrganization), errors.Is(err, tenant.ErrIdentityRequired):
			tenant.WriteError(ctx.ResponseWriter(), err)
		case errors.Is(err, ErrProjectNotFound):
			fallback(ctx, handler.ErrNotFound)
		case errors.Is(err, membership.ErrMembershipNotFound):
			fallback(ctx, errNotMember)
		default:
			fallback(ctx, err)
		}
	}
}
