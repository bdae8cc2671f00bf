// Package vault is the obfuscated persistent store for session secrets.
//
// It owns the bearer token, decoded user profile, and expiry records
// for the current client session, and it owns the transport client's
// default Authorization slot: setting or clearing the token here
// updates the header synchronously. Nothing else writes the session
// store or the header, which is what makes logout a single teardown
// path.
//
// Values are obfuscated with a reversible encoding before hitting disk.
// That guards against casual inspection only — it is not cryptographic
// protection and the rest of the system must not treat it as such.
package vault
