// Package config defines the application's configuration structures and
// the loading logic that populates them from environment variables.
// All settings are validated before the application starts.
package config
