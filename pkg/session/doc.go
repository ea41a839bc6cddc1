// Package session reads server-side sessions referenced by an opaque token.
//
// The token travels in "Authorization: Bearer <token>" or in the "sid" cookie.
// Sessions live in Redis (RedisStore) or in memory (MemoryStore) and carry the
// caller identity in Subject. Middleware loads the session into the request
// context and IdentitySource exposes its Subject to the tenant middleware:
//
//	store := session.NewRedisStore(client, cfg.RedisPrefix)
//	r.Use(session.Middleware(store, session.SourceFromConfig(cfg), log))
//	r.Use(tenant.Middleware(session.IdentitySource(), resolver))
//
// Creating and renewing sessions belongs to the authentication service.
package session
