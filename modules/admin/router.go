package admin

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantkit/handler"
	"github.com/dmitrymomot/tenantkit/pkg/binder"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

// Auditor runs the RLS diagnostics.
type Auditor interface {
	VerifyEnabled(ctx context.Context) (rls.Report, error)
	TestIsolation(ctx context.Context, userID int64) rls.Diagnostic
}

// RouterOptions configures the admin module.
type RouterOptions struct {
	// Token is the static bearer token; empty disables every route.
	Token   string
	Auditor Auditor
	Logger  *slog.Logger
}

type statusResponse struct {
	OK bool `json:"ok"`
	rls.Report
}

type isolationRequest struct {
	UserID int64 `path:"userID"`
}

// Router creates the admin API:
//
//	GET /rls/status              RLS state of every tenant-scoped table
//	GET /rls/isolation/{userID}  isolation probe for one user, {success, message}
//
// All routes sit behind Gate.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("admin"))
	onError := handler.NewErrorHandler(log)

	r := chi.NewRouter()
	r.Use(Gate(opts.Token, log))

	if opts.Auditor == nil {
		return r
	}

	r.Get("/rls/status", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		report, err := opts.Auditor.VerifyEnabled(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.Raw(statusResponse{OK: report.OK(), Report: report})
	}, handler.WithErrorHandler[struct{}](onError)))

	r.Get("/rls/isolation/{userID}", handler.Wrap(func(ctx handler.Context, req isolationRequest) handler.Response {
		diag := opts.Auditor.TestIsolation(ctx, req.UserID)
		log.InfoContext(ctx, "isolation test requested",
			logger.UserID(req.UserID),
			slog.Bool("success", diag.Success),
		)
		return handler.Raw(diag)
	},
		handler.WithBinders[isolationRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[isolationRequest](onError),
	))

	return r
}
