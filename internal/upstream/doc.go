// Package upstream is the client for the Sofra service's auth surface:
// credential exchange and authoritative permission fetches. It owns the
// wire format of those two endpoints and nothing else.
package upstream
