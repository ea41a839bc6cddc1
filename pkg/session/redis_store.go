package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON values under prefix+token with a TTL
// matching the session expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store on client. An empty prefix defaults to "session:".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultConfig().RedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Get loads the session stored under token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	session, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Save writes session with a TTL until its expiry.
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" || session.ExpiresAt.IsZero() {
		return ErrInvalidSession
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}
	if err := s.client.Set(ctx, s.prefix+session.Token, data, ttl).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes the session stored under token.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.prefix+token).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// decodeSession keeps numbers as json.Number so a numeric Subject is not
// turned into a float64.
func decodeSession(data []byte) (*Session, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var session Session
	if err := dec.Decode(&session); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	return &session, nil
}
