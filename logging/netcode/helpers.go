// Package netcode (logging/netcode) provides typed event constructors for
// the client engine's observable lifecycle and error-taxonomy events,
// mirroring the teacher repo's per-subsystem logging helper packages
// (one typed constructor per event, publishing through logging.Publisher).
package netcode

import (
	"context"

	"netcode/logging"
)

const (
	// EventConnected fires once MyPlayerID is assigned.
	EventConnected logging.EventType = "netcode.connected"
	// EventDuplicateConnAck fires when a second Connected message arrives.
	EventDuplicateConnAck logging.EventType = "netcode.duplicate_conn_ack"
	// EventProtocolViolation fires when a client-illegal message kind arrives.
	EventProtocolViolation logging.EventType = "netcode.protocol_violation"
	// EventDuplicateAuthInsert fires when an authoritative tick is re-received.
	EventDuplicateAuthInsert logging.EventType = "netcode.duplicate_auth_insert"
	// EventRequestAuthInput fires when the client asks for missing ticks.
	EventRequestAuthInput logging.EventType = "netcode.request_auth_input"
	// EventResyncEngaged fires when prediction allowance drops to zero.
	EventResyncEngaged logging.EventType = "netcode.resync_engaged"
	// EventResyncRecovered fires when the client is back within prediction range.
	EventResyncRecovered logging.EventType = "netcode.resync_recovered"
)

// ActorClient identifies the local client as the event's actor, since
// there is exactly one of it per process.
var ActorClient = logging.EntityRef{ID: "local", Kind: "client"}

// Connected publishes an info event recording the assigned PlayerID.
func Connected(ctx context.Context, pub logging.Publisher, tick uint64, playerID uint32) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConnected,
		Tick:     tick,
		Actor:    ActorClient,
		Severity: logging.SeverityInfo,
		Category: "netcode",
		Payload:  struct {
			PlayerID uint32 `json:"playerId"`
		}{playerID},
	})
}

// DuplicateConnAck publishes a warning when a second Connected message
// arrives after MyPlayerID is already set.
func DuplicateConnAck(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDuplicateConnAck,
		Tick:     tick,
		Actor:    ActorClient,
		Severity: logging.SeverityWarn,
		Category: "netcode",
	})
}

// ProtocolViolation publishes a warning for a client-illegal inbound kind.
func ProtocolViolation(ctx context.Context, pub logging.Publisher, tick uint64, kind string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProtocolViolation,
		Tick:     tick,
		Actor:    ActorClient,
		Severity: logging.SeverityWarn,
		Category: "netcode",
		Payload: struct {
			Kind string `json:"kind"`
		}{kind},
	})
}

// DuplicateAuthInsert publishes a debug event when an authoritative tick
// that already has an entry is re-received and dropped.
func DuplicateAuthInsert(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDuplicateAuthInsert,
		Tick:     tick,
		Actor:    ActorClient,
		Severity: logging.SeverityDebug,
		Category: "netcode",
	})
}

// RequestAuthInputSent publishes a debug event recording the ticks asked
// for in a gap-fill request. traceID correlates this event with the
// RequestAuthInput message it accompanies across log aggregation.
func RequestAuthInputSent(ctx context.Context, pub logging.Publisher, tick uint64, ticks []int64, traceID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:      EventRequestAuthInput,
		Tick:      tick,
		Actor:     ActorClient,
		Severity:  logging.SeverityDebug,
		Category:  "netcode",
		TraceID:   traceID,
		Payload: struct {
			Ticks []int64 `json:"ticks"`
		}{ticks},
	})
}

// ResyncEngaged publishes a warning when the client falls far enough behind
// that prediction is disabled (allowance == 0).
func ResyncEngaged(ctx context.Context, pub logging.Publisher, tick uint64, behindTicks int64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventResyncEngaged,
		Tick:     tick,
		Actor:    ActorClient,
		Severity: logging.SeverityWarn,
		Category: "netcode",
		Payload: struct {
			BehindTicks int64 `json:"behindTicks"`
		}{behindTicks},
	})
}

// ResyncRecovered publishes an info event when prediction resumes after a
// resync.
func ResyncRecovered(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventResyncRecovered,
		Tick:     tick,
		Actor:    ActorClient,
		Severity: logging.SeverityInfo,
		Category: "netcode",
	})
}
