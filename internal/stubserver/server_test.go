package stubserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
	"github.com/sofrahq/sofra-admin-session/internal/token"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Config{TokenTTL: time.Hour}, nil, logging.Discard())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server, email, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password}) //nolint:errcheck
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func TestLogin_IssuesDecodableToken(t *testing.T) {
	srv := newTestServer(t)

	resp := login(t, srv, "partner@sofra.example", "partner")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if body.TokenType != "Bearer" {
		t.Errorf("token type: got %q", body.TokenType)
	}
	if body.ExpiresIn != 3600 {
		t.Errorf("expires_in: got %d", body.ExpiresIn)
	}

	claims, err := token.Decode(body.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not decode: %v", err)
	}
	if claims.Subject != "u-1001" {
		t.Errorf("subject: got %q", claims.Subject)
	}
	if claims.Role != "partner" {
		t.Errorf("role: got %q", claims.Role)
	}
	if len(claims.PermissionHints) == 0 {
		t.Error("no permission hints embedded")
	}
	if claims.ID == "" {
		t.Error("no jti assigned")
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)

	resp := login(t, srv, "partner@sofra.example", "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", resp.StatusCode)
	}
}

func TestPermissions_RequiresBearer(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/users/u-1001/permissions")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", resp.StatusCode)
	}
}

func TestPermissions_ReturnsFixtureGrants(t *testing.T) {
	srv := newTestServer(t)

	loginResp := login(t, srv, "staff@sofra.example", "staff")
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginBody); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/users/u-1002/permissions", nil) //nolint:errcheck
	req.Header.Set("Authorization", "Bearer "+loginBody.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var body permissionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding permissions: %v", err)
	}
	if len(body.Permissions) != 2 {
		t.Errorf("grants: got %+v", body.Permissions)
	}

	// Unknown user with a valid token is a 404, not an empty list.
	req2, _ := http.NewRequest(http.MethodGet, srv.URL+"/users/nobody/permissions", nil) //nolint:errcheck
	req2.Header.Set("Authorization", "Bearer "+loginBody.AccessToken)
	resp2, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp2.Body.Close() //nolint:errcheck
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown user status: got %d, want 404", resp2.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
}
