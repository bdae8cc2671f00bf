package session

import "time"

// scheduleExpiryLocked arms the forced-logout timer to fire at the
// token deadline minus the expiry margin. Caller holds c.mu.
//
// A token already inside the margin gets no timer: the next restore or
// 401 handles it, and firing synchronously from under the lock would
// deadlock the teardown path.
func (c *Coordinator) scheduleExpiryLocked(expiresIn time.Duration) {
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
		c.expiryTimer = nil
	}

	fireIn := expiresIn - c.expiryMargin
	if fireIn <= 0 {
		c.logger.Warn("token lifetime inside expiry margin, no timer armed",
			"expires_in", expiresIn,
			"margin", c.expiryMargin,
		)
		return
	}

	c.expiryTimer = time.AfterFunc(fireIn, func() {
		c.logger.Info("session expiry reached, forcing logout")
		c.logoutTo(StateExpired)
	})

	c.logger.Debug("expiry logout scheduled", "fire_in", fireIn)
}
