package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for token decoding.
var (
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims are the facts embedded in a Sofra bearer token, recoverable
// locally without a server round-trip.
type Claims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"active"`

	// PermissionHints are the permission keys the issuer chose to embed.
	// They are advisory only — the authoritative set always comes from
	// the permission endpoint. Session restoration falls back to them
	// when no cached set is available.
	PermissionHints []string `json:"perms,omitempty"`
}

// Decode parses a bearer token's claims without verifying its signature.
//
// The client holds no signing secret; signature verification is the
// server's job on every request that presents the token. Decode only
// recovers the embedded claims and enforces the fields the session
// subsystem cannot operate without: a subject id and an expiry.
func Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrTokenInvalid)
	}

	return claims, nil
}

// ExpiresIn returns the remaining lifetime of the token at the given
// instant. Negative when already past expiry.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// Expired reports whether the token's literal deadline has passed.
// The vault applies the safety margin; this is the raw check used when
// deciding whether a stored token is worth restoring at all.
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt.Time)
}
