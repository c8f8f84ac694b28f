package netcode

import (
	"context"
	"sync"

	"netcode/clocksync"
	"netcode/internal/resyncsignal"
	"netcode/logging"
	"netcode/store"
	"netcode/telemetry"
	"netcode/wire"
)

// Client is the handle the application holds once Connect returns: the
// receive loop (C5) and heartbeat loop (C6) run in the background for as
// long as the Client is open, mutating the stores that Sample (C7) and
// SetInput (C8) read and write.
//
// All fields below AuthInputs/HintInputs/AuthWorlds/MaxAuthTick/
// MyPlayerID/CurrentInput/LastSubmittedTick/LastSampledAuthWorldTick are
// protected by mu, a single mutex covering every store accessed together
// during a sample or a submit (Design Notes §9's "reasonable default").
type Client[W any, I any] struct {
	cfg       Config
	sim       Simulation[W, I]
	transport Transport
	publisher logging.Publisher
	metrics   *telemetry.Counters
	clock     *clocksync.Estimator
	resync    *resyncsignal.Policy

	debugServerStop func()

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connected chan struct{}
	closeOnce sync.Once

	mu sync.Mutex

	inputs *store.InputStore[I]
	worlds *store.WorldCache[W]

	maxAuthTick Tick

	myPlayerID   PlayerID
	havePlayerID bool

	currentInput     I
	haveCurrentInput bool

	lastSubmittedTick Tick
	haveLastSubmitted bool

	lastSampledAuthWorldTick Tick

	resyncEngaged bool
}

// PlayerID returns the id the server assigned on connect. Always
// available: Connect does not return a Client until it is set.
func (c *Client[W, I]) PlayerID() PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.myPlayerID
}

// Metrics returns a point-in-time snapshot of this client's traffic,
// rollback, and clock-sync counters.
func (c *Client[W, I]) Metrics() telemetry.Snapshot {
	return c.metrics.Snapshot()
}

// ResyncSignal drains the pending diagnostic report of why the client
// disabled prediction and fell back to catch-up mode, if any has
// accumulated since the last call. It is purely additive: consuming it (or
// never calling it) has no effect on Sample's control flow.
func (c *Client[W, I]) ResyncSignal() (resyncsignal.Signal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resync.Consume()
}

// ResyncPending reports whether a resync signal is waiting to be consumed,
// without draining it. Useful for polling loops that want to defer
// ResyncSignal's allocation until there is actually something to report.
func (c *Client[W, I]) ResyncPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resync.Pending()
}

// Close stops the background receive and heartbeat loops and closes the
// underlying transport. Safe to call more than once.
func (c *Client[W, I]) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.debugServerStop != nil {
			c.debugServerStop()
		}
	})
	c.wg.Wait()
	return c.transport.Close()
}

// send marshals payload under kind and hands it to the transport. A
// transport error is treated as packet loss (§7): it is silently dropped,
// never surfaced to the caller.
func (c *Client[W, I]) send(ctx context.Context, kind wire.Kind, payload any) {
	data, err := wire.Marshal(kind, payload)
	if err != nil {
		panicInvariant("marshal %s: %v", kind, err)
	}
	if err := c.transport.Send(ctx, data); err != nil {
		return
	}
	c.metrics.RecordSend(len(data))
}
