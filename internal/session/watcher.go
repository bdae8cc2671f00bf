package session

import (
	"context"
	"time"
)

// WatchStore polls the vault to detect logout performed by another
// process sharing the store. SQLite offers no change notification, so
// this is a plain ticker at the configured interval.
//
// Disappearance of the stored profile while this process still believes
// it is authenticated means another context already cleared the store;
// local state is torn down without a second vault clear. Blocks until
// ctx is cancelled.
func (c *Coordinator) WatchStore(ctx context.Context) {
	ticker := time.NewTicker(c.watchInterval)
	defer ticker.Stop()

	c.logger.Debug("store watcher started", "interval", c.watchInterval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("store watcher stopped")
			return
		case <-ticker.C:
			c.checkStore(ctx)
		}
	}
}

// checkStore performs one poll round.
func (c *Coordinator) checkStore(ctx context.Context) {
	if c.State() != StateAuthenticated {
		return
	}

	profile, err := c.vault.Profile(ctx)
	if err != nil {
		c.logger.Warn("store poll failed", "error", err)
		return
	}
	if profile != nil {
		return
	}

	c.logger.Info("store cleared externally, tearing down local session")

	// The store clear inside logoutTo is a no-op here, but it keeps the
	// teardown on the single logout path and drops the bearer header.
	c.logoutTo(StateAnonymous)
}
