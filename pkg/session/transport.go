package session

import (
	"net/http"
	"strings"
)

// TokenSource extracts the session token from a request.
type TokenSource interface {
	Token(r *http.Request) (string, bool)
}

// HeaderSource reads the token from a header such as "Authorization: Bearer <token>".
type HeaderSource struct {
	Name   string
	Prefix string
}

// NewHeaderSource creates a header source with the "Bearer " prefix.
func NewHeaderSource(name string) HeaderSource {
	return HeaderSource{Name: name, Prefix: "Bearer "}
}

func (h HeaderSource) Token(r *http.Request) (string, bool) {
	value := r.Header.Get(h.Name)
	if h.Prefix != "" {
		if !strings.HasPrefix(value, h.Prefix) {
			return "", false
		}
		value = strings.TrimPrefix(value, h.Prefix)
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// CookieSource reads the token from a cookie.
type CookieSource struct {
	Name string
}

func (c CookieSource) Token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// CompositeSource tries sources in order.
type CompositeSource []TokenSource

func (c CompositeSource) Token(r *http.Request) (string, bool) {
	for _, src := range c {
		if token, ok := src.Token(r); ok {
			return token, true
		}
	}
	return "", false
}

// SourceFromConfig reads the bearer header first, then the cookie.
func SourceFromConfig(cfg Config) TokenSource {
	return CompositeSource{NewHeaderSource(cfg.HeaderName), CookieSource{Name: cfg.CookieName}}
}
