// Package session coordinates the authenticated session lifecycle: the
// login sequence with its mandatory permission fetch, restoration from
// the vault at startup, scheduled logout ahead of token expiry, forced
// logout on unauthorised responses, and detection of logout performed
// by another process sharing the store.
//
// The Coordinator is an explicit state machine over five states
// (anonymous, authenticating, restoring, authenticated, expired) with
// observer callbacks on every transition. Two rules shape everything
// in here: the authenticated state only becomes observable once the
// permission set has resolved, and every teardown trigger funnels
// through the one idempotent logout primitive.
package session
