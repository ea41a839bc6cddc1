package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type options struct {
	envFiles []string
	prefix   string
}

// Option tunes a single Load call.
type Option func(*options)

// WithEnvFiles loads the given dotenv files before parsing. Variables already
// present in the process environment win. Missing files are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.envFiles = append(o.envFiles, paths...)
	}
}

// WithPrefix prepends prefix to every env tag, e.g. "ADMIN_" turns PG_CONN_URL
// into ADMIN_PG_CONN_URL. Useful when one process needs two pools.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// Load parses the environment into v using `env` and `envDefault` struct tags.
//
// Nothing is cached: each call reads the environment again, so callers own the
// resulting value and pass it explicitly to the components that need it.
//
// Example:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg, config.WithEnvFiles(".env")); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &options{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(o)
	}

	for _, path := range o.envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", path, err))
		}
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	return nil
}

// MustLoad works like Load but panics on failure. Use it in main only.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
