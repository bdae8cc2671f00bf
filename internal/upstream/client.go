package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sofrahq/sofra-admin-session/internal/permissions"
	"github.com/sofrahq/sofra-admin-session/internal/transport"
)

// Sentinel errors for upstream operations.
var (
	// ErrInvalidCredentials indicates the login endpoint rejected the
	// email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// permissionsResponse is the response body for GET /users/{id}/permissions.
type permissionsResponse struct {
	Permissions []permissions.Grant `json:"permissions"`
}

// Client calls the upstream Sofra service through the shared transport,
// so the default bearer slot and the 401 interceptor apply to every
// request it makes.
type Client struct {
	transport *transport.Client
}

// New creates an upstream client over the shared transport.
func New(tc *transport.Client) *Client {
	return &Client{transport: tc}
}

// Authenticate exchanges credentials for a bearer token.
//
// Credential rejection maps to ErrInvalidCredentials; all other
// failures pass through from the transport.
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.transport.Do(ctx, http.MethodPost, "/auth/login",
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("authenticating: %w", err)
	}

	if resp.AccessToken == "" {
		return "", fmt.Errorf("authenticating: empty token in response")
	}
	return resp.AccessToken, nil
}

// FetchPermissions retrieves the authoritative grant list for a subject.
//
// A successful response carrying no list yields an empty slice, never
// nil with no error ambiguity — the caller decides what an empty set
// means (the evaluator treats it as zero permissions).
func (c *Client) FetchPermissions(ctx context.Context, subjectID string) ([]permissions.Grant, error) {
	var resp permissionsResponse
	path := "/users/" + url.PathEscape(subjectID) + "/permissions"
	if err := c.transport.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching permissions for %s: %w", subjectID, err)
	}

	if resp.Permissions == nil {
		return []permissions.Grant{}, nil
	}
	return resp.Permissions, nil
}
