// Package telemetry exposes process-wide atomic counters and gauges for
// the engine, following the teacher's sync.Map-backed counter pattern so
// metric keys never need to be enumerated up front. Counters is safe for
// concurrent use from the receive loop, the heartbeat loop, and the
// sample loop simultaneously.
package telemetry

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type simpleCounter struct {
	data sync.Map
}

func (c *simpleCounter) add(key string, delta uint64) {
	if c == nil || delta == 0 {
		return
	}
	key = normalizeKey(key)
	current, _ := c.data.LoadOrStore(key, &atomic.Uint64{})
	current.(*atomic.Uint64).Add(delta)
}

func (c *simpleCounter) snapshot() map[string]uint64 {
	if c == nil {
		return nil
	}
	out := make(map[string]uint64)
	c.data.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Uint64).Load()
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeKey(key string) string {
	if key == "" {
		return "unknown"
	}
	return key
}

// Counters accumulates per-connection traffic, rollback, and clock-sync
// metrics for one Client.
type Counters struct {
	bytesSent       atomic.Uint64
	bytesReceived   atomic.Uint64
	messagesSent    atomic.Uint64
	messagesRecv    atomic.Uint64
	inputsSubmitted atomic.Uint64
	authTicksApplied atomic.Uint64
	rollbackCount   atomic.Uint64
	rollbackDepth   atomic.Int64 // most recent rollback depth, in ticks
	resyncCount     atomic.Uint64
	predictionAllowance atomic.Int64
	clockOffsetMicros   atomic.Int64
	clockRTTMicros      atomic.Int64
	clockJitterMicros   atomic.Int64

	protocolViolations simpleCounter // keyed by message kind
	debug              bool
}

// NewCounters returns a zeroed Counters. Setting NETCODE_DEBUG_TELEMETRY=1
// sets the flag DebugEnabled reports; Counters itself writes nothing to
// stdout.
func NewCounters() *Counters {
	return &Counters{debug: os.Getenv("NETCODE_DEBUG_TELEMETRY") == "1"}
}

// RecordSend accounts for one outbound message of n bytes.
func (c *Counters) RecordSend(n int) {
	if c == nil {
		return
	}
	c.messagesSent.Add(1)
	if n > 0 {
		c.bytesSent.Add(uint64(n))
	}
}

// RecordReceive accounts for one inbound message of n bytes.
func (c *Counters) RecordReceive(n int) {
	if c == nil {
		return
	}
	c.messagesRecv.Add(1)
	if n > 0 {
		c.bytesReceived.Add(uint64(n))
	}
}

// RecordInputSubmitted increments the count of local inputs sent upstream.
func (c *Counters) RecordInputSubmitted() {
	if c == nil {
		return
	}
	c.inputsSubmitted.Add(1)
}

// RecordAuthTickApplied increments the count of authoritative ticks
// absorbed into the world cache.
func (c *Counters) RecordAuthTickApplied() {
	if c == nil {
		return
	}
	c.authTicksApplied.Add(1)
}

// RecordRollback records one rollback-and-resimulate pass of the given
// depth in ticks.
func (c *Counters) RecordRollback(depthTicks int64) {
	if c == nil {
		return
	}
	c.rollbackCount.Add(1)
	if depthTicks < 0 {
		depthTicks = 0
	}
	c.rollbackDepth.Store(depthTicks)
}

// RecordResync increments the count of times prediction allowance hit zero.
func (c *Counters) RecordResync() {
	if c == nil {
		return
	}
	c.resyncCount.Add(1)
}

// SetPredictionAllowance records the current number of ticks the client is
// permitted to predict ahead of MaxAuthTick.
func (c *Counters) SetPredictionAllowance(ticks int64) {
	if c == nil {
		return
	}
	c.predictionAllowance.Store(ticks)
}

// SetClockEstimate records the latest offset/RTT/jitter estimate.
func (c *Counters) SetClockEstimate(offset, rtt, jitter time.Duration) {
	if c == nil {
		return
	}
	c.clockOffsetMicros.Store(offset.Microseconds())
	c.clockRTTMicros.Store(rtt.Microseconds())
	c.clockJitterMicros.Store(jitter.Microseconds())
}

// RecordProtocolViolation increments the count of illegal inbound
// messages of the given kind.
func (c *Counters) RecordProtocolViolation(kind string) {
	if c == nil {
		return
	}
	c.protocolViolations.add(kind, 1)
}

// DebugEnabled reports whether verbose stdout telemetry is enabled.
func (c *Counters) DebugEnabled() bool {
	return c != nil && c.debug
}

// Snapshot is the JSON-serializable view of Counters, suitable for an
// operator-facing debug endpoint.
type Snapshot struct {
	BytesSent           uint64            `json:"bytesSent"`
	BytesReceived       uint64            `json:"bytesReceived"`
	MessagesSent        uint64            `json:"messagesSent"`
	MessagesReceived    uint64            `json:"messagesReceived"`
	InputsSubmitted     uint64            `json:"inputsSubmitted"`
	AuthTicksApplied    uint64            `json:"authTicksApplied"`
	RollbackCount       uint64            `json:"rollbackCount"`
	LastRollbackDepth   int64             `json:"lastRollbackDepthTicks"`
	ResyncCount         uint64            `json:"resyncCount"`
	PredictionAllowance int64             `json:"predictionAllowanceTicks"`
	ClockOffsetMicros   int64             `json:"clockOffsetMicros"`
	ClockRTTMicros      int64             `json:"clockRttMicros"`
	ClockJitterMicros   int64             `json:"clockJitterMicros"`
	ProtocolViolations  map[string]uint64 `json:"protocolViolations,omitempty"`
}

// Snapshot returns a point-in-time copy of all counters.
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		BytesSent:           c.bytesSent.Load(),
		BytesReceived:       c.bytesReceived.Load(),
		MessagesSent:        c.messagesSent.Load(),
		MessagesReceived:    c.messagesRecv.Load(),
		InputsSubmitted:     c.inputsSubmitted.Load(),
		AuthTicksApplied:    c.authTicksApplied.Load(),
		RollbackCount:       c.rollbackCount.Load(),
		LastRollbackDepth:   c.rollbackDepth.Load(),
		ResyncCount:         c.resyncCount.Load(),
		PredictionAllowance: c.predictionAllowance.Load(),
		ClockOffsetMicros:   c.clockOffsetMicros.Load(),
		ClockRTTMicros:      c.clockRTTMicros.Load(),
		ClockJitterMicros:   c.clockJitterMicros.Load(),
		ProtocolViolations:  c.protocolViolations.snapshot(),
	}
}

// ServeHTTP renders the counters as JSON, for use behind
// NETCODE_TELEMETRY_ADDR (see StartDebugServer).
func (c *Counters) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c.Snapshot())
}

// StartDebugServer starts a best-effort HTTP server exposing the counters
// at /telemetry when NETCODE_TELEMETRY_ADDR is set, returning a stop
// function. If the env var is unset, it returns a no-op stop function.
func (c *Counters) StartDebugServer() (stop func()) {
	addr := os.Getenv("NETCODE_TELEMETRY_ADDR")
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/telemetry", c)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return func() {
		_ = srv.Close()
	}
}
