// Package logging provides structured logging for the session client.
//
// It wraps log/slog with service-wide default attributes and level
// filtering driven by configuration. Components receive a *Logger and
// tag their records with a component attribute via With.
package logging
