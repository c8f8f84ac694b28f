// Package resyncsignal accumulates the reasons a client fell out of
// prediction range into a single coalesced signal, so a burst of
// individual rollback/gap events collapses into one diagnostic report
// instead of one log line per tick.
package resyncsignal

import "fmt"

// Reason names one contributing cause of a pending resync signal.
type Reason struct {
	Kind string // short cause label, e.g. "resync_threshold"
	Note string
}

// Signal is a coalesced report of why prediction was disabled, drained
// via Policy.Consume whenever the caller asks for it.
type Signal struct {
	BehindTicks  int64
	TotalEvents  uint64
	Reasons      []Reason
}

// Policy tracks rolling counters and decides when a resync report is due.
// It is not internally synchronized: callers that share a Policy across
// goroutines must hold their own lock (the engine's Client does).
type Policy struct {
	totalEvents uint64
	behindTicks int64
	pending     bool
	reasons     []Reason
}

const reasonLimit = 8

// New returns an empty Policy.
func New() *Policy {
	return &Policy{reasons: make([]Reason, 0, reasonLimit)}
}

// NoteEvent records one tick's worth of activity toward TotalEvents,
// halving the running totals on overflow rather than wrapping.
func (p *Policy) NoteEvent() {
	if p == nil {
		return
	}
	if p.totalEvents == ^uint64(0) {
		p.totalEvents /= 2
	}
	p.totalEvents++
}

// NoteBehind records that prediction was disabled because MaxAuthTick is
// behindTicks ticks behind the target tick, for the given reason, and
// marks the signal pending.
func (p *Policy) NoteBehind(behindTicks int64, kind, note string) {
	if p == nil {
		return
	}
	if behindTicks > p.behindTicks {
		p.behindTicks = behindTicks
	}
	if len(p.reasons) < reasonLimit {
		p.reasons = append(p.reasons, Reason{Kind: kind, Note: note})
	}
	p.pending = true
}

// Consume drains and clears the pending signal, reporting false if none
// is pending.
func (p *Policy) Consume() (Signal, bool) {
	if p == nil || !p.pending {
		return Signal{}, false
	}
	signal := Signal{
		BehindTicks: p.behindTicks,
		TotalEvents: p.totalEvents,
		Reasons:     append([]Reason(nil), p.reasons...),
	}
	p.pending = false
	p.behindTicks = 0
	p.totalEvents = 0
	p.reasons = p.reasons[:0]
	return signal, true
}

// Pending reports whether a signal is waiting to be consumed.
func (p *Policy) Pending() bool {
	return p != nil && p.pending
}

// Summary renders a one-line human-readable description, or "" if the
// signal carries nothing worth reporting.
func (s Signal) Summary() string {
	if s.BehindTicks == 0 && s.TotalEvents == 0 {
		return ""
	}
	return fmt.Sprintf("behind_ticks=%d total_events=%d reasons=%v", s.BehindTicks, s.TotalEvents, s.Reasons)
}
