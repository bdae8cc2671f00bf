package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
)

// maxResponseSize caps response bodies read into memory (4 MB).
const maxResponseSize = 4 << 20

// Sentinel errors for transport-level failures.
var (
	// ErrUnauthorized is returned for any 401 response, after the
	// interceptor chain has run.
	ErrUnauthorized = errors.New("unauthorised")
)

// StatusError represents a non-2xx response that is not a 401.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream error (HTTP %d): %s", e.Status, e.Message)
}

// errorBody is the upstream service's structured error payload.
type errorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseInterceptor observes every response before it is returned to
// the caller. Interceptors must not read or close the body and must not
// swallow the response; they exist for cross-cutting status inspection.
type ResponseInterceptor func(*http.Response)

// Client is the ambient HTTP client shared by every upstream caller.
//
// It holds a mutable default Authorization slot: once a bearer token is
// set, every subsequent request from any caller carries it, and once it
// is cleared, none do. This is the only place the token touches the
// wire, so header state can never diverge between callers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger

	mu           sync.RWMutex
	bearerToken  string
	interceptors []ResponseInterceptor
}

// New creates a Client for the given base URL.
//
// A zero timeout leaves the net/http default in place; the session
// subsystem imposes no request timeout of its own.
func New(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger.With("component", "transport"),
	}
}

// SetBearerToken sets the default Authorization bearer for all
// subsequent requests. An empty token clears the slot.
func (c *Client) SetBearerToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearerToken = token
}

// BearerToken returns the current default bearer token, or "" if unset.
func (c *Client) BearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearerToken
}

// RegisterResponseInterceptor adds a hook that runs on every response,
// success or failure, before the response is handed back to the caller.
// Registration is expected at construction time, before requests flow.
func (c *Client) RegisterResponseInterceptor(fn ResponseInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptors = append(c.interceptors, fn)
}

// Do performs a JSON request against the upstream service.
//
// body, when non-nil, is marshalled as the JSON request body. out, when
// non-nil, receives the decoded JSON response on 2xx. A 401 maps to
// ErrUnauthorized and any other non-2xx to *StatusError — in both cases
// after the interceptor chain has observed the response, so a logout
// hook fires before the original caller sees the error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.BearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read side only

	c.logger.Debug("upstream response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// Interceptors observe every response, including errors, before the
	// caller does. They never consume the body.
	c.mu.RLock()
	interceptors := c.interceptors
	c.mu.RUnlock()
	for _, fn := range interceptors {
		fn(resp)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, payload)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}

	return nil
}

// statusError converts a non-2xx response into the appropriate error.
func (c *Client) statusError(status int, payload []byte) error {
	var body errorBody
	message := ""
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		message = body.Message
	}

	if status == http.StatusUnauthorized {
		if message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, message)
		}
		return ErrUnauthorized
	}

	if message == "" {
		message = strings.TrimSpace(string(payload))
	}
	return &StatusError{Status: status, Code: body.Code, Message: message}
}
