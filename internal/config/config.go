package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
	Synth    SynthConfig    `mapstructure:"synth"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// QueueConfig bounds the generation task queue: how many synthesis jobs may
// execute concurrently, how long a single job may run, and how long finished
// tasks and their artifacts are retained before the sweeper reclaims them.
type QueueConfig struct {
	MaxConcurrentTasks     int `mapstructure:"max_concurrent_tasks"     validate:"required,gte=1"`
	TaskTimeoutSeconds     int `mapstructure:"task_timeout_seconds"     validate:"required,gt=0"`
	TaskRetentionSeconds   int `mapstructure:"task_retention_seconds"   validate:"required,gt=0"`
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds" validate:"required,gt=0"`
}

// TaskTimeout returns the per-task execution deadline as a duration.
func (c QueueConfig) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

// TaskRetention returns the terminal-task retention window as a duration.
func (c QueueConfig) TaskRetention() time.Duration {
	return time.Duration(c.TaskRetentionSeconds) * time.Second
}

// CleanupInterval returns the sweeper period as a duration.
func (c QueueConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// SynthConfig contains settings for the synthesis engine collaborator and
// its output artifacts.
type SynthConfig struct {
	OutputDir string `mapstructure:"output_dir" validate:"required"`
	ModelDir  string `mapstructure:"model_dir"  validate:"required"`
}
