package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // ConnectionURL in the form "redis://:password@localhost:6379/0". Empty disables Redis.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of attempts to reach the server on startup.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`   // RetryInterval is the delay between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout bounds the whole connection phase.
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
