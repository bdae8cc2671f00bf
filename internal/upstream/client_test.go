package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
	"github.com/sofrahq/sofra-admin-session/internal/transport"
)

func newTestUpstream(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(transport.New(srv.URL, 0, logging.Discard()))
}

func TestAuthenticate_Success(t *testing.T) {
	c := newTestUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding login body: %v", err)
		}
		if body.Email != "partner@sofra.example" {
			t.Errorf("email not sent: %q", body.Email)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`)) //nolint:errcheck
	})

	tok, err := c.Authenticate(context.Background(), "partner@sofra.example", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if tok != "tok-1" {
		t.Errorf("token: got %q", tok)
	}
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	c := newTestUpstream(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Authenticate(context.Background(), "x@y", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_EmptyTokenIsError(t *testing.T) {
	c := newTestUpstream(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"token_type":"Bearer"}`)) //nolint:errcheck
	})

	if _, err := c.Authenticate(context.Background(), "x@y", "pw"); err == nil {
		t.Fatal("expected error for response without a token")
	}
}

func TestFetchPermissions(t *testing.T) {
	c := newTestUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/42/permissions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"permissions":[{"key":"admin.kitchen.view","name":"View kitchen"}]}`)) //nolint:errcheck
	})

	grants, err := c.FetchPermissions(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchPermissions failed: %v", err)
	}
	if len(grants) != 1 || grants[0].Key != "admin.kitchen.view" {
		t.Errorf("grants: got %+v", grants)
	}
}

func TestFetchPermissions_MissingListSettlesEmpty(t *testing.T) {
	c := newTestUpstream(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`)) //nolint:errcheck
	})

	grants, err := c.FetchPermissions(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchPermissions failed: %v", err)
	}
	if grants == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(grants) != 0 {
		t.Errorf("expected no grants, got %+v", grants)
	}
}

func TestFetchPermissions_ServerError(t *testing.T) {
	c := newTestUpstream(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := c.FetchPermissions(context.Background(), "42"); err == nil {
		t.Fatal("expected error on 500")
	}
}
