package session

import "context"

// Store persists sessions by token. Sessions are written by the authentication
// service; this module reads them and saves only for seeding and tests.
type Store interface {
	// Get returns ErrSessionNotFound or ErrSessionExpired when the token is unusable.
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, token string) error
}
