package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/database"
	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
	"github.com/sofrahq/sofra-admin-session/internal/permissions"
	"github.com/sofrahq/sofra-admin-session/internal/transport"
)

// Logical record keys in the session store. Each is independently
// settable and clearable.
const (
	keyToken   = "token"
	keyProfile = "profile"
	keyExpiry  = "expiry"
)

// DefaultExpiryMargin is how far ahead of the token's literal deadline
// the session is treated as expired. Covers in-flight requests that
// would otherwise race the expiry.
const DefaultExpiryMargin = 5 * time.Minute

// StoredToken is the persisted token record.
type StoredToken struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at_client_time"`
}

// storedExpiry is the persisted expiry record, kept separate from the
// token so expiry checks never re-decode the token.
type storedExpiry struct {
	ExpiryEpochMs int64 `json:"expiry_epoch_ms"`
}

// Profile is the decoded user identity stored alongside the token. It
// may carry the permission set fetched at login so restoration can skip
// the network; that cached copy is advisory — the evaluator's in-memory
// set is authoritative for the running session.
type Profile struct {
	UserID         string              `json:"user_id"`
	DisplayName    string              `json:"display_name"`
	Email          string              `json:"email"`
	Role           string              `json:"role"`
	IsActive       bool                `json:"is_active"`
	Permissions    []permissions.Grant `json:"fetched_permissions,omitempty"`
	PermissionKeys []string            `json:"permission_keys,omitempty"`
}

// Vault is the sole reader and writer of session-lifetime secrets.
//
// It owns three records in the session store — token, profile, expiry —
// and the transport client's default bearer slot. Every SetToken and
// ClearAll mutates the bearer slot synchronously, so outbound requests
// from any caller carry or lack the token consistently. No other
// component touches the underlying store.
type Vault struct {
	db           *database.DB
	transport    *transport.Client
	logger       *logging.Logger
	expiryMargin time.Duration
}

// New creates a Vault over the given store and transport client.
// A non-positive expiryMargin falls back to DefaultExpiryMargin.
func New(db *database.DB, tc *transport.Client, expiryMargin time.Duration, logger *logging.Logger) *Vault {
	if expiryMargin <= 0 {
		expiryMargin = DefaultExpiryMargin
	}
	return &Vault{
		db:           db,
		transport:    tc,
		logger:       logger.With("component", "vault"),
		expiryMargin: expiryMargin,
	}
}

// SetToken stores the bearer token with a client-side issue stamp and
// propagates it to the transport client's default header. An empty
// token clears both the record and the header.
func (v *Vault) SetToken(ctx context.Context, token string) error {
	if token == "" {
		if err := v.deleteRecord(ctx, keyToken); err != nil {
			return err
		}
		v.transport.SetBearerToken("")
		return nil
	}

	record := StoredToken{Token: token, IssuedAt: time.Now()}
	if err := v.putRecord(ctx, keyToken, record); err != nil {
		return err
	}
	v.transport.SetBearerToken(token)
	return nil
}

// Token returns the stored bearer token, or "" when absent.
func (v *Vault) Token(ctx context.Context) (string, error) {
	var record StoredToken
	found, err := v.getRecord(ctx, keyToken, &record)
	if err != nil || !found {
		return "", err
	}
	return record.Token, nil
}

// RestoreHeader re-propagates a stored token to the transport client's
// default header without rewriting the record. Used by session
// restoration, which rehydrates rather than re-creates the session.
func (v *Vault) RestoreHeader(ctx context.Context) error {
	token, err := v.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		v.transport.SetBearerToken(token)
	}
	return nil
}

// SetProfile stores the decoded user profile. A nil profile clears the
// record.
func (v *Vault) SetProfile(ctx context.Context, p *Profile) error {
	if p == nil {
		return v.deleteRecord(ctx, keyProfile)
	}
	return v.putRecord(ctx, keyProfile, p)
}

// Profile returns the stored profile, or nil when absent.
func (v *Vault) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	found, err := v.getRecord(ctx, keyProfile, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// SetExpiry computes and stores the absolute expiry instant from a
// remaining lifetime.
func (v *Vault) SetExpiry(ctx context.Context, expiresIn time.Duration) error {
	record := storedExpiry{ExpiryEpochMs: time.Now().Add(expiresIn).UnixMilli()}
	return v.putRecord(ctx, keyExpiry, record)
}

// ExpiresAt returns the stored absolute expiry instant and whether one
// is recorded.
func (v *Vault) ExpiresAt(ctx context.Context) (time.Time, bool, error) {
	var record storedExpiry
	found, err := v.getRecord(ctx, keyExpiry, &record)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return time.UnixMilli(record.ExpiryEpochMs), true, nil
}

// Expired reports whether the session should be treated as expired:
// true when no expiry is recorded, or when now is within the safety
// margin of the deadline. Expiry is deliberately reached before the
// literal deadline.
func (v *Vault) Expired(ctx context.Context, now time.Time) (bool, error) {
	deadline, found, err := v.ExpiresAt(ctx)
	if err != nil {
		return true, err
	}
	if !found {
		return true, nil
	}
	return !now.Add(v.expiryMargin).Before(deadline), nil
}

// ClearAll removes the token, profile, and expiry records in one
// transaction and clears the bearer header. Callers never observe a
// partially cleared store.
func (v *Vault) ClearAll(ctx context.Context) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting clear transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is a no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_store"); err != nil {
		return fmt.Errorf("clearing session store: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing clear: %w", err)
	}

	v.transport.SetBearerToken("")
	v.logger.Debug("session store cleared")
	return nil
}

// putRecord obfuscates and upserts one record.
func (v *Vault) putRecord(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", key, err)
	}

	_, err = v.db.ExecContext(ctx, `
		INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, obfuscate(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing %s record: %w", key, err)
	}
	return nil
}

// getRecord reads and deobfuscates one record into out. Returns false
// when the record is absent; a record that fails deobfuscation or
// decoding is treated as absent (a hand-edited store should behave like
// a cleared one, not crash the client).
func (v *Vault) getRecord(ctx context.Context, key string, out any) (bool, error) {
	var encoded string
	err := v.db.QueryRowContext(ctx,
		"SELECT value FROM session_store WHERE key = ?", key,
	).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s record: %w", key, err)
	}

	data, err := deobfuscate(encoded)
	if err != nil {
		v.logger.Warn("discarding unreadable session record", "key", key, "error", err)
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		v.logger.Warn("discarding undecodable session record", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// deleteRecord removes one record; absent records are fine.
func (v *Vault) deleteRecord(ctx context.Context, key string) error {
	if _, err := v.db.ExecContext(ctx, "DELETE FROM session_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s record: %w", key, err)
	}
	return nil
}
