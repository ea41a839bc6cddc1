// Package binder binds HTTP request data to Go structs.
//
// Two binders are provided: JSON for request bodies and Path for router path
// parameters. Both return functions with the signature expected by
// handler.Wrap:
//
//	type switchRequest struct {
//	    OrganizationID string `json:"organization_id"`
//	}
//
//	r.Post("/organizations/active", handler.Wrap(switchOrganization,
//	    handler.WithBinders[switchRequest](binder.JSON()),
//	))
//
//	type projectRequest struct {
//	    ID int64 `path:"id"`
//	}
//
//	r.Get("/projects/{id}", handler.Wrap(getProject,
//	    handler.WithBinders[projectRequest](binder.Path(chi.URLParam)),
//	))
//
// Failures wrap one of the package errors (ErrUnsupportedMediaType,
// ErrMissingContentType, ErrFailedToParseJSON, ErrFailedToParsePath), which
// the handler package maps to 4xx responses.
package binder
