// Package transport provides the shared HTTP client for upstream calls.
//
// Two pieces of cross-cutting state live here and nowhere else: the
// default Authorization bearer slot (written only by the token vault)
// and the response interceptor chain (used by the session coordinator
// to force logout on 401). Every outbound request from any component
// goes through one Client instance, so header and interceptor behaviour
// is consistent across callers by construction.
package transport
