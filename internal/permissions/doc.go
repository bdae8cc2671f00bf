// Package permissions answers authorisation queries for the admin UI.
//
// A static Registry maps routes and navigation entries to required
// permission keys; the Evaluator holds the keys the current user
// actually has and answers HasPermission / HasAnyPermission /
// HasAllPermissions / CanAccessRoute / navigation-filtering queries
// against it. All UI call sites depend on this one query surface, so a
// server-side policy engine can replace the evaluation later without
// touching them.
//
// Failure posture: a permission fetch that errors during an ongoing
// session degrades to the empty set — deny by default — rather than
// surfacing an error to the UI.
package permissions
