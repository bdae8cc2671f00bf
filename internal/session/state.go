package session

// State is the coordinator's externally observable authentication state.
type State string

const (
	// StateAnonymous means no session exists: fresh start or after logout.
	StateAnonymous State = "anonymous"

	// StateAuthenticating means a login attempt is in flight. The
	// authenticated flag never flips on until the permission fetch has
	// resolved successfully.
	StateAuthenticating State = "authenticating"

	// StateRestoring means startup rehydration from the vault is running.
	StateRestoring State = "restoring"

	// StateAuthenticated means a session with resolved permissions is live.
	StateAuthenticated State = "authenticated"

	// StateExpired means the expiry scheduler forced logout. Functionally
	// equivalent to anonymous, distinguished so UI layers can explain why
	// the user was signed out.
	StateExpired State = "expired"
)

// Session is the in-memory identity of the authenticated user. It is a
// read-only snapshot handed to consumers; the coordinator owns the
// authoritative copy.
type Session struct {
	ID          string
	UserID      string
	DisplayName string
	Email       string
	Role        string
	IsActive    bool
}

// LoginResult is the outcome of a login attempt. Success is false for
// credential rejection, token decode failure, and permission-fetch
// failure — the last of these even though authentication itself
// succeeded upstream, because a session without resolved permissions is
// never exposed.
type LoginResult struct {
	Success  bool
	Message  string
	UserInfo *Session
}
