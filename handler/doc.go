// Package handler provides typed HTTP handlers that render JSON.
//
// A HandlerFunc receives a Context and a request value of type R populated by
// binders, and returns a Response. Wrap turns it into an http.HandlerFunc:
//
//	type switchRequest struct {
//		OrganizationID string `json:"organization_id"`
//	}
//
//	r.Post("/organizations/active", handler.Wrap(
//		func(ctx handler.Context, req switchRequest) handler.Response {
//			if err := store.SetActiveOrganization(ctx, userID, req.OrganizationID); err != nil {
//				return handler.JSONError(err)
//			}
//			return handler.Empty()
//		},
//		handler.WithBinders[switchRequest](binder.JSON()),
//	))
//
// Successful payloads are rendered as {"data": ...}; errors as
// {"error": key, "message": text} with the status taken from HTTPError or the
// binder error kind. Server errors never expose the underlying error text.
package handler
