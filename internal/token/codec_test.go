package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signTestToken builds a signed token the way the upstream service does.
// The secret is irrelevant to Decode (unverified parse) but produces a
// structurally valid JWT.
func signTestToken(t *testing.T, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func validClaims(now time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		DisplayName:     "Kitchen Partner",
		Email:           "partner@sofra.example",
		Role:            "partner",
		IsActive:        true,
		PermissionHints: []string{"admin.kitchen.view", "admin.menu.view"},
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	now := time.Now()
	raw := signTestToken(t, validClaims(now))

	claims, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if claims.Subject != "42" {
		t.Errorf("subject: got %q, want 42", claims.Subject)
	}
	if claims.Role != "partner" {
		t.Errorf("role: got %q, want partner", claims.Role)
	}
	if !claims.IsActive {
		t.Error("active flag lost in decode")
	}
	if len(claims.PermissionHints) != 2 {
		t.Errorf("permission hints: got %v", claims.PermissionHints)
	}
	if in := claims.ExpiresIn(now); in < 59*time.Minute || in > time.Hour {
		t.Errorf("ExpiresIn: got %v, want ~1h", in)
	}
}

func TestDecode_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		if _, err := Decode(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Decode(%q): expected ErrTokenInvalid, got %v", raw, err)
		}
	}
}

func TestDecode_MissingSubject(t *testing.T) {
	claims := validClaims(time.Now())
	claims.Subject = ""
	raw := signTestToken(t, claims)

	if _, err := Decode(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for missing subject, got %v", err)
	}
}

func TestDecode_MissingExpiry(t *testing.T) {
	claims := validClaims(time.Now())
	claims.ExpiresAt = nil
	raw := signTestToken(t, claims)

	if _, err := Decode(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for missing expiry, got %v", err)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	claims := validClaims(now)

	if claims.Expired(now) {
		t.Error("token with 1h remaining should not be expired")
	}
	if !claims.Expired(now.Add(2 * time.Hour)) {
		t.Error("token past exp should be expired")
	}
}
