package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
	"github.com/sofrahq/sofra-admin-session/internal/stubserver"
)

// TestLoadConfig_DefaultWhenMissing verifies the CLI falls back to
// built-in defaults when no config file exists.
func TestLoadConfig_DefaultWhenMissing(t *testing.T) {
	originalEnv := os.Getenv("SOFRA_CONFIG")
	defer os.Setenv("SOFRA_CONFIG", originalEnv) //nolint:errcheck

	os.Setenv("SOFRA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml")) //nolint:errcheck

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Session.ExpiryMargin != 300 {
		t.Errorf("expiry margin default: got %d", cfg.Session.ExpiryMargin)
	}
}

// TestRun_UnknownCommand verifies run rejects commands it does not know.
func TestRun_UnknownCommand(t *testing.T) {
	setTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, []string{"frobnicate"}); err == nil {
		t.Fatal("run() should fail for an unknown command")
	}
}

// TestRun_NoCommand verifies run fails without a command.
func TestRun_NoCommand(t *testing.T) {
	setTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, nil); err == nil {
		t.Fatal("run() should fail with no command")
	}
}

// TestRun_LoginStatusLogout drives the full command cycle against the
// stub service, with the vault store persisting between invocations the
// way it does between real CLI runs.
func TestRun_LoginStatusLogout(t *testing.T) {
	stub := stubserver.New(stubserver.Config{TokenTTL: time.Hour}, nil, logging.Discard())
	srv := httptest.NewServer(stub.Handler())
	defer srv.Close()

	setTestEnv(t)
	os.Setenv("SOFRA_UPSTREAM_BASE_URL", srv.URL) //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, []string{"login", "-email", "partner@sofra.example", "-password", "partner"}); err != nil {
		t.Fatalf("login command failed: %v", err)
	}
	if err := run(ctx, []string{"status"}); err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	if err := run(ctx, []string{"nav"}); err != nil {
		t.Fatalf("nav command failed: %v", err)
	}
	if err := run(ctx, []string{"routes"}); err != nil {
		t.Fatalf("routes command failed: %v", err)
	}
	if err := run(ctx, []string{"logout"}); err != nil {
		t.Fatalf("logout command failed: %v", err)
	}

	// Bad credentials surface as a command error, not a panic or success.
	if err := run(ctx, []string{"login", "-email", "partner@sofra.example", "-password", "wrong"}); err == nil {
		t.Fatal("login with bad credentials should fail")
	}
}

// setTestEnv points the CLI at a temp store and quiet logging.
func setTestEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SOFRA_CONFIG", "SOFRA_UPSTREAM_BASE_URL", "SOFRA_DATABASE_PATH", "SOFRA_LOGGING_LEVEL"} {
		original := os.Getenv(key)
		t.Cleanup(func() { os.Setenv(key, original) }) //nolint:errcheck
	}
	os.Setenv("SOFRA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))       //nolint:errcheck
	os.Setenv("SOFRA_DATABASE_PATH", filepath.Join(t.TempDir(), "session.db")) //nolint:errcheck
	os.Setenv("SOFRA_LOGGING_LEVEL", "error")                                  //nolint:errcheck
}
