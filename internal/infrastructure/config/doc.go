// Package config loads and validates client configuration.
//
// Configuration comes from three layers, each overriding the last:
// hardcoded defaults, a YAML file, and SOFRA_* environment variables.
// The loaded Config is immutable for the lifetime of the process.
package config
