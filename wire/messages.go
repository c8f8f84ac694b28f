// Package wire defines the closed set of message kinds exchanged between
// client and server (specification §6) and their JSON encoding, including
// the "compact map list" format used by AuthInput to carry consecutive
// per-tick input maps without repeating tick numbers.
//
// The exact compact-list byte format is an explicit Open Question in the
// specification (no existing server was available to reproduce bit-exactly
// against); this package defines a reasonable JSON encoding of its own and
// records that decision in the repository's design notes.
package wire

import (
	"encoding/json"
	"fmt"
	"strconv"

	"netcode/tick"
)

// Tick and PlayerID alias the shared identifier types.
type (
	Tick     = tick.Tick
	PlayerID = tick.PlayerID
)

// ProtocolVersion is bumped whenever a wire-incompatible change is made to
// the envelope or any payload below.
const ProtocolVersion = 1

// Kind is the closed tag set for every message the engine sends or
// receives. Unknown kinds are a protocol violation and are logged/dropped.
type Kind string

const (
	KindConnect          Kind = "connect"
	KindConnected        Kind = "connected"
	KindHeartbeat        Kind = "heartbeat"
	KindHeartbeatResp    Kind = "heartbeatResponse"
	KindSubmitInput      Kind = "submitInput"
	KindAck              Kind = "ack"
	KindAuthInput        Kind = "authInput"
	KindHintInput        Kind = "hintInput"
	KindRequestAuthInput Kind = "requestAuthInput"
)

// serverToClientKinds records the tags a client may legally receive, used by
// the receive loop to flag protocol violations (§4.5: Connect, SubmitInput,
// Ack, RequestAuthInput, Heartbeat arriving at a client are illegal).
var serverToClientKinds = map[Kind]bool{
	KindConnected:     true,
	KindHeartbeatResp: true,
	KindAuthInput:     true,
	KindHintInput:     true,
}

// IsServerToClient reports whether kind is ever legally received by a
// client. Anything else inbound is a protocol violation.
func IsServerToClient(k Kind) bool { return serverToClientKinds[k] }

// Envelope is the outermost wire shape: a version, a tag, and an opaque
// payload whose shape is determined by Kind.
type Envelope struct {
	Ver     int             `json:"ver"`
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshal wraps payload in an Envelope tagged with kind and serializes it.
func Marshal(kind Kind, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal %s payload: %w", kind, err)
	}
	env := Envelope{Ver: ProtocolVersion, Kind: kind, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal envelope: %w", err)
	}
	return data, nil
}

// Unmarshal decodes the envelope and returns its kind and raw payload,
// leaving payload-specific decoding to the caller (who knows the expected
// shape from the kind, and — for input-carrying payloads — the
// application's Codec).
func Unmarshal(data []byte) (Kind, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("wire: unmarshal envelope: %w", err)
	}
	return env.Kind, env.Payload, nil
}

// --- Per-kind payloads ---

// ConnectPayload requests joining; timestamp is the client's local send
// time in Unix nanoseconds (opaque to the server beyond echoing it back).
type ConnectPayload struct {
	ClientSendUnixNano int64 `json:"clientSendUnixNano"`
}

// ConnectedPayload assigns the connecting client its PlayerID.
type ConnectedPayload struct {
	PlayerID PlayerID `json:"playerId"`
}

// HeartbeatPayload carries a liveness/clock-sample request.
type HeartbeatPayload struct {
	ClientSendUnixNano int64 `json:"clientSendUnixNano"`
}

// HeartbeatRespPayload echoes the client's send time alongside the
// server's receipt time, giving the client a round-trip clock sample.
type HeartbeatRespPayload struct {
	ClientSendUnixNano int64 `json:"clientSendUnixNano"`
	ServerRecvUnixNano int64 `json:"serverRecvUnixNano"`
}

// SubmitInputPayload carries one player's input for a target tick. Input is
// left as raw bytes: the engine encodes/decodes it via the application's
// Codec rather than this package knowing the input's shape.
type SubmitInputPayload struct {
	Tick  Tick            `json:"tick"`
	Input json.RawMessage `json:"input"`
}

// AckPayload acknowledges the unbroken authoritative-input prefix.
type AckPayload struct {
	Tick Tick `json:"tick"`
}

// CompactInputMap is one tick's per-player input map, string-keyed by
// decimal PlayerID (JSON object keys must be strings) with each player's
// input left as raw bytes pending Codec decoding.
type CompactInputMap map[string]json.RawMessage

// AuthInputPayload carries consecutive authoritative inputs starting at
// HeadTick, followed by speculative hints for the ticks immediately after
// the authoritative run (starting at HeadTick+len(Auth)).
type AuthInputPayload struct {
	HeadTick Tick              `json:"headTick"`
	Auth     []CompactInputMap `json:"auth"`
	Hints    []CompactInputMap `json:"hints,omitempty"`
}

// HintInputPayload carries a single speculative input.
type HintInputPayload struct {
	Tick     Tick            `json:"tick"`
	PlayerID PlayerID        `json:"playerId"`
	Input    json.RawMessage `json:"input"`
}

// RequestAuthInputPayload asks the server to resend authoritative input for
// the listed ticks, bounded by Config.MaxRequestAuthInputs.
type RequestAuthInputPayload struct {
	Ticks []Tick `json:"ticks"`
}

// Codec serializes/deserializes one application-supplied input value. The
// application provides this; the engine never interprets input bytes.
type Codec[I any] interface {
	Encode(I) ([]byte, error)
	Decode([]byte) (I, error)
}

// EncodeInputMap converts a decoded per-player input map into its compact
// wire form using codec.
func EncodeInputMap[I any](codec Codec[I], m map[PlayerID]I) (CompactInputMap, error) {
	out := make(CompactInputMap, len(m))
	for p, in := range m {
		raw, err := codec.Encode(in)
		if err != nil {
			return nil, fmt.Errorf("wire: encode input for player %s: %w", p, err)
		}
		out[strconv.FormatUint(uint64(p), 10)] = raw
	}
	return out, nil
}

// DecodeInputMap converts a compact wire-form map into a decoded per-player
// input map using codec.
func DecodeInputMap[I any](codec Codec[I], m CompactInputMap) (map[PlayerID]I, error) {
	out := make(map[PlayerID]I, len(m))
	for key, raw := range m {
		id, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("wire: decode player id %q: %w", key, err)
		}
		in, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("wire: decode input for player %s: %w", key, err)
		}
		out[PlayerID(id)] = in
	}
	return out, nil
}
