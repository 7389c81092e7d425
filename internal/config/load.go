package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load,
// e.g. VOICEBOX_SERVER_PORT maps to the server.port key.
const envPrefix = "VOICEBOX"

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Environment variables use the VOICEBOX_ prefix
// with underscores separating nested keys.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// binding each known key explicitly makes them visible.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"queue.max_concurrent_tasks",
		"queue.task_timeout_seconds",
		"queue.task_retention_seconds",
		"queue.cleanup_interval_seconds",
		"synth.output_dir",
		"synth.model_dir",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults applies the default values for all optional settings.
// Required settings (database URL, JWT secret) have no defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60*24*7)
	v.SetDefault("queue.max_concurrent_tasks", 3)
	v.SetDefault("queue.task_timeout_seconds", 300)
	v.SetDefault("queue.task_retention_seconds", 3600)
	v.SetDefault("queue.cleanup_interval_seconds", 600)
	v.SetDefault("synth.output_dir", "./outputs/api")
	v.SetDefault("synth.model_dir", "./checkpoints")
}
