package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
	"github.com/sofrahq/sofra-admin-session/internal/permissions"
	"github.com/sofrahq/sofra-admin-session/internal/token"
	"github.com/sofrahq/sofra-admin-session/internal/transport"
	"github.com/sofrahq/sofra-admin-session/internal/upstream"
	"github.com/sofrahq/sofra-admin-session/internal/vault"
)

// Config tunes session lifecycle behaviour.
type Config struct {
	// ExpiryMargin is how far ahead of the token deadline forced logout
	// fires. Defaults to vault.DefaultExpiryMargin.
	ExpiryMargin time.Duration

	// WatchInterval is the cross-context logout poll interval.
	// Defaults to one second.
	WatchInterval time.Duration
}

// defaultWatchInterval is the cross-context poll cadence when the
// config leaves it unset.
const defaultWatchInterval = time.Second

// Coordinator drives the session state machine.
//
// It owns the only logout path: every teardown trigger — explicit
// action, token expiry, a 401 from any endpoint, or external clearing
// of the vault — funnels through Logout (or its expired variant), which
// clears the vault, the bearer header, and the evaluator together.
// Logout is idempotent and safe to invoke from any goroutine.
type Coordinator struct {
	vault     *vault.Vault
	upstream  *upstream.Client
	evaluator *permissions.Evaluator
	logger    *logging.Logger

	expiryMargin  time.Duration
	watchInterval time.Duration

	mu          sync.Mutex
	state       State
	session     *Session
	observers   []func(State)
	expiryTimer *time.Timer
	restoring   bool
}

// New wires a Coordinator over the vault, upstream client, and shared
// transport.
//
// The permission evaluator is constructed here so its subject id can
// resolve from the vault profile with the in-memory session as
// fallback, and the 401 interceptor is registered on the transport so
// any unauthorised response from any caller forces logout before the
// error reaches the original caller.
func New(v *vault.Vault, up *upstream.Client, tc *transport.Client, registry *permissions.Registry, cfg Config, logger *logging.Logger) *Coordinator {
	if cfg.ExpiryMargin <= 0 {
		cfg.ExpiryMargin = vault.DefaultExpiryMargin
	}
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = defaultWatchInterval
	}

	c := &Coordinator{
		vault:         v,
		upstream:      up,
		logger:        logger.With("component", "session"),
		expiryMargin:  cfg.ExpiryMargin,
		watchInterval: cfg.WatchInterval,
		state:         StateAnonymous,
	}

	c.evaluator = permissions.NewEvaluator(registry, up, c.resolveSubject, logger)

	tc.RegisterResponseInterceptor(func(resp *http.Response) {
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Info("unauthorised response, forcing logout",
				"path", resp.Request.URL.Path,
			)
			c.Logout()
		}
	})

	return c
}

// Evaluator returns the permission evaluator bound to this session.
func (c *Coordinator) Evaluator() *permissions.Evaluator {
	return c.evaluator
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAuthenticated reports whether a committed session is live.
func (c *Coordinator) IsAuthenticated() bool {
	return c.State() == StateAuthenticated
}

// Restoring reports whether startup rehydration is still in progress.
func (c *Coordinator) Restoring() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restoring
}

// Session returns a copy of the current session, or nil when anonymous.
func (c *Coordinator) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Subscribe registers an observer invoked on every state transition,
// outside the coordinator's lock, in registration order.
func (c *Coordinator) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Login runs the full login sequence.
//
// The commit point for the authenticated state is deliberately after
// the permission fetch: a token is written to the vault first (the
// fetch itself needs it on the wire), but if the fetch fails for any
// reason the token is rolled back and the attempt reports failure even
// though authentication succeeded upstream. A session with an unknown
// permission set is never observable.
//
// Upstream rejections and fetch failures are reported in the
// LoginResult with a nil error; a non-nil error means a local storage
// failure.
func (c *Coordinator) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	c.transition(StateAuthenticating)

	rawToken, err := c.upstream.Authenticate(ctx, email, password)
	if err != nil {
		// Defensive clear: guards against a half-applied previous session.
		if clearErr := c.vault.ClearAll(ctx); clearErr != nil {
			c.logger.Error("vault clear after failed login", "error", clearErr)
		}
		c.transition(StateAnonymous)

		if errors.Is(err, upstream.ErrInvalidCredentials) {
			return &LoginResult{Success: false, Message: "invalid credentials"}, nil
		}
		c.logger.Warn("authentication failed", "error", err)
		return &LoginResult{Success: false, Message: "authentication failed"}, nil
	}

	claims, err := token.Decode(rawToken)
	if err != nil {
		c.logger.Warn("token decode failed at login", "error", err)
		return c.rollbackLogin(ctx, "invalid token")
	}

	expiresIn := claims.ExpiresIn(time.Now())

	// The token must be persisted (and on the wire) before the
	// permission fetch starts.
	if err := c.vault.SetToken(ctx, rawToken); err != nil {
		c.transition(StateAnonymous)
		return nil, err
	}
	if err := c.vault.SetExpiry(ctx, expiresIn); err != nil {
		c.transition(StateAnonymous)
		return nil, err
	}

	// Provisional profile from decoded claims; permissions merged below.
	profile := &vault.Profile{
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Role:        claims.Role,
		IsActive:    claims.IsActive,
	}

	// Authoritative fetch — not optional and not best-effort. Any
	// failure here fails the whole login.
	grants, err := c.upstream.FetchPermissions(ctx, claims.Subject)
	if err != nil {
		c.logger.Warn("permission fetch failed, rolling back login",
			"subject", claims.Subject,
			"error", err,
		)
		return c.rollbackLogin(ctx, "permissions load failed")
	}

	profile.Permissions = grants
	profile.PermissionKeys = permissions.Keys(grants)
	if err := c.vault.SetProfile(ctx, profile); err != nil {
		if clearErr := c.vault.ClearAll(ctx); clearErr != nil {
			c.logger.Error("vault clear during rollback", "error", clearErr)
		}
		c.transition(StateAnonymous)
		return nil, err
	}

	// Commit point: only now does the authenticated state become
	// observable.
	c.evaluator.SetGrants(grants)

	sess := &Session{
		ID:          uuid.NewString(),
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Role:        claims.Role,
		IsActive:    claims.IsActive,
	}

	c.mu.Lock()
	c.session = sess
	c.state = StateAuthenticated
	c.scheduleExpiryLocked(expiresIn)
	c.mu.Unlock()
	c.notify(StateAuthenticated)

	c.logger.Info("login committed",
		"subject", claims.Subject,
		"role", claims.Role,
		"permission_count", len(grants),
	)

	snapshot := *sess
	return &LoginResult{Success: true, UserInfo: &snapshot}, nil
}

// rollbackLogin tears down the partial login state and reports failure.
func (c *Coordinator) rollbackLogin(ctx context.Context, message string) (*LoginResult, error) {
	if err := c.vault.ClearAll(ctx); err != nil {
		c.logger.Error("vault clear during rollback", "error", err)
	}
	c.evaluator.Clear()
	c.transition(StateAnonymous)
	return &LoginResult{Success: false, Message: message}, nil
}

// Restore rehydrates the session from the vault at process start,
// without any network call.
//
// A missing token ends in the anonymous state; an undecodable or
// already-expired token forces logout. Otherwise the cached permission
// keys from the stored profile are preferred, falling back to the
// hints embedded in the token, and the bearer header is re-propagated.
// The restoring flag clears on every path.
func (c *Coordinator) Restore(ctx context.Context) error {
	c.mu.Lock()
	c.restoring = true
	c.state = StateRestoring
	c.mu.Unlock()
	c.notify(StateRestoring)

	defer func() {
		c.mu.Lock()
		c.restoring = false
		c.mu.Unlock()
	}()

	rawToken, err := c.vault.Token(ctx)
	if err != nil {
		return err
	}
	if rawToken == "" {
		c.transition(StateAnonymous)
		return nil
	}

	claims, err := token.Decode(rawToken)
	if err != nil || claims.Expired(time.Now()) {
		c.logger.Info("stored token unusable, logging out",
			"decode_failed", err != nil,
		)
		c.Logout()
		return nil
	}

	profile, err := c.vault.Profile(ctx)
	if err != nil {
		return err
	}

	// Prefer the permission keys cached at login; fall back to token
	// hints. Fresh-enough beats a network round-trip on every reload.
	var keys []string
	if profile != nil && len(profile.PermissionKeys) > 0 {
		keys = profile.PermissionKeys
	} else {
		keys = claims.PermissionHints
	}

	if err := c.vault.RestoreHeader(ctx); err != nil {
		return err
	}
	c.evaluator.SetKeys(keys)

	sess := &Session{
		ID:          uuid.NewString(),
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Role:        claims.Role,
		IsActive:    claims.IsActive,
	}
	if profile != nil {
		sess.UserID = profile.UserID
		sess.DisplayName = profile.DisplayName
		sess.Email = profile.Email
		sess.Role = profile.Role
		sess.IsActive = profile.IsActive
	}

	c.mu.Lock()
	c.session = sess
	c.state = StateAuthenticated
	c.mu.Unlock()
	c.notify(StateAuthenticated)

	c.logger.Info("session restored",
		"subject", sess.UserID,
		"cached_keys", len(keys),
	)
	return nil
}

// Logout tears down the session: vault cleared (which also drops the
// bearer header), evaluator emptied, pending expiry timer stopped.
// Safe to call repeatedly and from any trigger.
func (c *Coordinator) Logout() {
	c.logoutTo(StateAnonymous)
}

// logoutTo is Logout with an explicit terminal state (anonymous for
// ordinary logout, expired when the scheduler fires).
func (c *Coordinator) logoutTo(final State) {
	c.mu.Lock()
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
		c.expiryTimer = nil
	}
	c.session = nil
	changed := c.state != final
	c.state = final
	c.mu.Unlock()

	if err := c.vault.ClearAll(context.Background()); err != nil {
		c.logger.Error("vault clear during logout", "error", err)
	}
	c.evaluator.Clear()

	if changed {
		c.notify(final)
	}
}

// Close stops the pending expiry timer. The store watcher stops via its
// own context.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
		c.expiryTimer = nil
	}
}

// transition moves to a new state and notifies observers.
func (c *Coordinator) transition(next State) {
	c.mu.Lock()
	changed := c.state != next
	c.state = next
	c.mu.Unlock()
	if changed {
		c.notify(next)
	}
}

// notify invokes observers outside the lock, in registration order.
func (c *Coordinator) notify(state State) {
	c.mu.Lock()
	observers := append(([]func(State))(nil), c.observers...)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(state)
	}
}

// resolveSubject is the evaluator's subject source: the vault profile
// first, the in-memory session as fallback while storage is not yet
// populated.
func (c *Coordinator) resolveSubject(ctx context.Context) string {
	if profile, err := c.vault.Profile(ctx); err == nil && profile != nil {
		return profile.UserID
	}
	if sess := c.Session(); sess != nil {
		return sess.UserID
	}
	return ""
}
