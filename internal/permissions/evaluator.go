package permissions

import (
	"context"
	"sync"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
)

// Fetcher retrieves the authoritative grant list for a subject.
// Satisfied by the upstream API client.
type Fetcher interface {
	FetchPermissions(ctx context.Context, subjectID string) ([]Grant, error)
}

// SubjectResolver returns the subject id the evaluator should fetch
// permissions for, or "" when no subject is known yet. The coordinator
// wires this to the vault profile with the in-memory session as
// fallback.
type SubjectResolver func(ctx context.Context) string

// Evaluator owns the in-memory permission set for the running session
// and answers every authorisation query the UI makes.
//
// Two representations are kept in lockstep: the rich grant list for UI
// surfaces that need metadata, and a flat key set for O(1) membership
// checks. Both are replaced together under one lock, so they can never
// diverge.
type Evaluator struct {
	registry *Registry
	fetcher  Fetcher
	subject  SubjectResolver
	logger   *logging.Logger

	mu     sync.RWMutex
	grants []Grant
	keys   map[string]struct{}
	loaded bool
}

// NewEvaluator creates an evaluator bound to a registry and a fetcher.
func NewEvaluator(registry *Registry, fetcher Fetcher, subject SubjectResolver, logger *logging.Logger) *Evaluator {
	return &Evaluator{
		registry: registry,
		fetcher:  fetcher,
		subject:  subject,
		logger:   logger.With("component", "permissions"),
		keys:     make(map[string]struct{}),
	}
}

// HasPermission reports whether the user holds the given key.
func (e *Evaluator) HasPermission(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.keys[key]
	return ok
}

// HasAnyPermission reports whether the user holds at least one of keys.
// False for an empty list.
func (e *Evaluator) HasAnyPermission(keys []string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, key := range keys {
		if _, ok := e.keys[key]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the user holds every one of keys.
// True for an empty list.
func (e *Evaluator) HasAllPermissions(keys []string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, key := range keys {
		if _, ok := e.keys[key]; !ok {
			return false
		}
	}
	return true
}

// CanAccessRoute reports whether the user may enter the named route.
// Routes that require no permissions — including routes absent from the
// registry entirely — are unconditionally accessible.
func (e *Evaluator) CanAccessRoute(routeName string) bool {
	required, ok := e.registry.RouteKeys(routeName)
	if !ok || len(required) == 0 {
		return true
	}
	return e.HasAnyPermission(required)
}

// AllowedNavigationItems filters the registry's navigation list to the
// entries the user may see: those requiring no keys, or at least one
// held key.
func (e *Evaluator) AllowedNavigationItems() []NavigationItem {
	var allowed []NavigationItem
	for _, item := range e.registry.NavigationItems() {
		if len(item.RequiredKeys) == 0 || e.HasAnyPermission(item.RequiredKeys) {
			allowed = append(allowed, item)
		}
	}
	return allowed
}

// Grants returns a copy of the rich grant list.
func (e *Evaluator) Grants() []Grant {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Grant(nil), e.grants...)
}

// PermissionKeys returns the held keys in grant order.
func (e *Evaluator) PermissionKeys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Keys(e.grants)
}

// Loaded reports whether a permission resolution has settled since the
// last Clear. All three settle outcomes (data, empty, error) count.
func (e *Evaluator) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// SetGrants replaces the permission set from an authoritative grant list.
func (e *Evaluator) SetGrants(grants []Grant) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceLocked(grants)
}

// SetKeys replaces the permission set from bare keys, used on session
// restoration where only the cached key list survives. Grant metadata
// is synthesised from the keys so both representations stay aligned.
func (e *Evaluator) SetKeys(keys []string) {
	grants := make([]Grant, len(keys))
	for i, key := range keys {
		grants[i] = Grant{Key: key}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceLocked(grants)
}

// Clear resets the evaluator to the empty, unloaded state. Called on
// logout from any trigger.
func (e *Evaluator) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grants = nil
	e.keys = make(map[string]struct{})
	e.loaded = false
}

// Refetch re-runs the authoritative permission fetch for the current
// subject.
//
// Skipped entirely while no subject id is known. A fetch failure during
// an ongoing session is non-fatal: the set degrades to empty
// (deny-by-default), the error is logged, and nil is returned so UI
// callers are never blocked on it. An empty-but-successful response is
// likewise treated as zero permissions.
func (e *Evaluator) Refetch(ctx context.Context) {
	subjectID := e.subject(ctx)
	if subjectID == "" {
		e.logger.Debug("permission fetch skipped: no subject id")
		return
	}

	grants, err := e.fetcher.FetchPermissions(ctx, subjectID)
	if err != nil {
		e.logger.Warn("permission fetch failed, degrading to empty set",
			"subject", subjectID,
			"error", err,
		)
		e.SetGrants(nil)
		return
	}

	if len(grants) == 0 {
		// Indistinguishable from a user with no grants; logged so
		// operators can tell the two apart when debugging.
		e.logger.Debug("permission fetch returned no grants", "subject", subjectID)
	}
	e.SetGrants(grants)
}

// replaceLocked swaps in a new grant list and rebuilds the key set.
// Caller holds e.mu.
func (e *Evaluator) replaceLocked(grants []Grant) {
	e.grants = append([]Grant(nil), grants...)
	e.keys = make(map[string]struct{}, len(grants))
	for _, g := range grants {
		e.keys[g.Key] = struct{}{}
	}
	e.loaded = true
}
