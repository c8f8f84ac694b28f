package netcode

import (
	"context"
	"time"

	"netcode/clocksync"
	"netcode/internal/resyncsignal"
	"netcode/logging"
	"netcode/store"
	"netcode/telemetry"
)

// Connect spawns the receive loop (C5) and heartbeat loop (C6) over
// transport, blocks until the server assigns a PlayerID or ctx is
// cancelled, and returns the resulting Client handle (C9).
//
// publisher receives structured lifecycle and error-taxonomy events; pass
// logging.NopPublisher{} (or nil) to disable.
func Connect[W any, I any](ctx context.Context, transport Transport, sim Simulation[W, I], cfg Config, publisher logging.Publisher) (*Client[W, I], error) {
	if publisher == nil {
		publisher = logging.NopPublisher{}
	}
	cfg = cfg.normalized()

	runCtx, cancel := context.WithCancel(context.Background())

	c := &Client[W, I]{
		cfg:       cfg,
		sim:       sim,
		transport: transport,
		publisher: publisher,
		metrics:   telemetry.NewCounters(),
		clock:     clocksync.New(time.Now(), cfg.TickRate),
		resync:    resyncsignal.New(),
		inputs:    store.New[I](),
		worlds:    store.NewWorldCache[W](sim.World0()),
		runCtx:    runCtx,
		cancel:    cancel,
		connected: make(chan struct{}),
	}

	c.debugServerStop = c.metrics.StartDebugServer()

	c.wg.Add(2)
	go c.receiveLoop()
	go c.heartbeatLoop()

	select {
	case <-c.connected:
		return c, nil
	case <-ctx.Done():
		_ = c.Close()
		return nil, ctx.Err()
	}
}
