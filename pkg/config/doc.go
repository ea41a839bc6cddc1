// Package config loads typed configuration from environment variables and
// optional dotenv files using github.com/caarlos0/env/v11 and
// github.com/joho/godotenv.
//
// Every package of the module declares its own Config struct with `env` tags
// (pg.Config, redis.Config, rls.Config, ...). The application loads each one in
// main and injects the values; there is no process-wide registry.
//
//	var rlsCfg rls.Config
//	config.MustLoad(&rlsCfg)
package config
