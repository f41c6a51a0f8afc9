// Package config defines the application configuration structure and its
// loading logic. Configuration is assembled from defaults, an optional
// config.yaml and NIA_-prefixed environment variables, then validated as a
// whole. Components receive their configuration as explicit constructor
// arguments; nothing reads the environment after startup.
package config
