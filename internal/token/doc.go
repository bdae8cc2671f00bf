// Package token decodes bearer token claims on the client side.
//
// Decoding is deliberately unverified: the upstream service signs and
// validates tokens; the client only needs the embedded subject, role,
// permission hints, and expiry to coordinate its session state.
package token
