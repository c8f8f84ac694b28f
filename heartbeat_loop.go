package netcode

import (
	"time"

	"netcode/wire"
)

// heartbeatLoop is C6: every HeartbeatIntervalBeforeSync (before the clock
// estimator has produced analytics) or HeartbeatIntervalAfterSync
// (thereafter), send Connect if MyPlayerID is still unknown, else
// Heartbeat.
func (c *Client[W, I]) heartbeatLoop() {
	defer c.wg.Done()
	for {
		interval := c.cfg.HeartbeatIntervalBeforeSync
		if _, _, ok := c.clock.Analytics(); ok {
			interval = c.cfg.HeartbeatIntervalAfterSync
		}

		timer := time.NewTimer(interval)
		select {
		case <-c.runCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		c.announce()
	}
}

func (c *Client[W, I]) announce() {
	now := time.Now()

	c.mu.Lock()
	connected := c.havePlayerID
	c.mu.Unlock()

	if !connected {
		c.send(c.runCtx, wire.KindConnect, wire.ConnectPayload{ClientSendUnixNano: now.UnixNano()})
		return
	}
	c.send(c.runCtx, wire.KindHeartbeat, wire.HeartbeatPayload{ClientSendUnixNano: now.UnixNano()})
}
