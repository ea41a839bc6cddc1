// Package identity resolves the identity value carried by a session into a
// canonical numeric user id.
//
// Sessions may hold a numeric id, a digit-only string or an external provider
// subject such as "google_999". Parse classifies the value into exactly one of
// NumericID, ProviderID or Unparseable; Resolver maps it to a user id, looking
// provider subjects up through a UserStore.
//
//	r := identity.NewResolver(identity.NewPostgresUserStore(mgr))
//	userID, ok, err := r.Resolve(ctx, session.Subject)
//	if err != nil || !ok {
//		// anonymous request
//	}
//
// Unresolvable values are not errors: they make the request anonymous.
package identity
