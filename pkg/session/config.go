package session

// Config holds session transport and storage settings.
type Config struct {
	// CookieName is the name of the session cookie (default: "sid")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// HeaderName carries "Bearer <token>" for API clients.
	HeaderName string `env:"SESSION_HEADER_NAME" envDefault:"Authorization"`

	// RedisPrefix namespaces session keys in Redis.
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"session:"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:  "sid",
		HeaderName:  "Authorization",
		RedisPrefix: "session:",
	}
}
