package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// UserStore maps external provider subjects to canonical user ids.
type UserStore interface {
	// UserIDByExternalID returns ErrUserNotFound when nothing matches.
	UserIDByExternalID(ctx context.Context, externalID string) (int64, error)
}

// Resolver turns raw session values into canonical user ids.
type Resolver struct {
	parser Parser
	users  UserStore
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithParser overrides the default provider prefixes.
func WithParser(p Parser) ResolverOption {
	return func(r *Resolver) { r.parser = p }
}

// WithLogger sets the logger used for debug traces of unresolved values.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver. users may be nil, in which case provider
// subjects never resolve.
func NewResolver(users UserStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		parser: NewParser(),
		users:  users,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps raw to a user id. ok=false means the request is anonymous, which
// is a valid outcome and not an error. err is non-nil only when the user store
// failed; callers must then treat the request as anonymous too.
func (r *Resolver) Resolve(ctx context.Context, raw any) (userID int64, ok bool, err error) {
	switch id := r.parser.Parse(raw).(type) {
	case NumericID:
		if id <= 0 {
			r.logger.DebugContext(ctx, "non-positive user id treated as anonymous", slog.Int64("value", int64(id)))
			return 0, false, nil
		}
		return int64(id), true, nil

	case ProviderID:
		if r.users == nil {
			return 0, false, nil
		}
		uid, err := r.users.UserIDByExternalID(ctx, string(id))
		if errors.Is(err, ErrUserNotFound) {
			r.logger.DebugContext(ctx, "external identity has no user")
			return 0, false, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("resolve external identity: %w", err)
		}
		if uid <= 0 {
			return 0, false, nil
		}
		return uid, true, nil

	default:
		return 0, false, nil
	}
}

// ResolveStrict is Resolve with ErrUnresolved in place of ok=false.
func (r *Resolver) ResolveStrict(ctx context.Context, raw any) (int64, error) {
	uid, ok, err := r.Resolve(ctx, raw)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUnresolved
	}
	return uid, nil
}
