package session

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state behind an opaque token. Subject carries the
// caller identity as written by the authentication service: a numeric id, a
// digit-only string or a provider subject such as "google_999".
type Session struct {
	Token     string         `json:"token"`
	Subject   any            `json:"subject,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewSession creates a session with a random token.
func NewSession(subject any, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:     uuid.NewString(),
		Subject:   subject,
		Data:      make(map[string]any),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsExpired returns true if the session has expired
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// HasSubject reports whether the session carries an identity.
func (s *Session) HasSubject() bool {
	return s != nil && s.Subject != nil
}

// Get retrieves a value from session data
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

func (s *Session) clone() *Session {
	c := *s
	if s.Data != nil {
		c.Data = make(map[string]any, len(s.Data))
		maps.Copy(c.Data, s.Data)
	}
	return &c
}
