// Package stubserver is a development stand-in for the Sofra service's
// auth surface: credential exchange issuing signed bearer tokens and
// per-user permission lookups from fixtures. It exists so the session
// client can be exercised locally and in integration tests without a
// real backend.
package stubserver
