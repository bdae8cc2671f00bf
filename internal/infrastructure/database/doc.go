// Package database manages the SQLite connection backing the token vault.
//
// It provides connection setup (WAL mode, busy timeout, owner-only file
// permissions) and an embedded-migration runner. The vault package owns
// the schema; this package only opens the store and applies migrations.
package database
