package netcode

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	netcodelog "netcode/logging/netcode"
	"netcode/wire"
)

// receiveLoop is C5: it continuously receives messages and dispatches them
// by Kind. Every mutation step below happens while holding c.mu, so each
// inbound message is applied atomically with respect to Sample and
// SetInput.
func (c *Client[W, I]) receiveLoop() {
	defer c.wg.Done()
	for {
		data, err := c.transport.Recv(c.runCtx)
		if err != nil {
			select {
			case <-c.runCtx.Done():
				return
			default:
				// Transport failure is treated as packet loss (§7); the
				// heartbeat loop and gap-fill requests drive recovery.
				continue
			}
		}
		c.metrics.RecordReceive(len(data))
		c.handleMessage(data)
	}
}

func (c *Client[W, I]) handleMessage(data []byte) {
	kind, raw, err := wire.Unmarshal(data)
	if err != nil {
		c.metrics.RecordProtocolViolation("malformed")
		netcodelog.ProtocolViolation(c.runCtx, c.publisher, 0, "malformed envelope")
		return
	}
	if !wire.IsServerToClient(kind) {
		c.metrics.RecordProtocolViolation(string(kind))
		netcodelog.ProtocolViolation(c.runCtx, c.publisher, 0, string(kind))
		return
	}

	switch kind {
	case wire.KindConnected:
		c.handleConnected(raw)
	case wire.KindHeartbeatResp:
		c.handleHeartbeatResp(raw)
	case wire.KindAuthInput:
		c.handleAuthInput(raw)
	case wire.KindHintInput:
		c.handleHintInput(raw)
	}
}

// handleConnected implements §4.5's ConnAck case: the first Connected
// message assigns MyPlayerID; any further one is a duplicate, logged and
// ignored.
func (c *Client[W, I]) handleConnected(raw json.RawMessage) {
	var payload wire.ConnectedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}

	c.mu.Lock()
	if c.havePlayerID {
		c.mu.Unlock()
		netcodelog.DuplicateConnAck(c.runCtx, c.publisher, 0)
		return
	}
	c.myPlayerID = payload.PlayerID
	c.havePlayerID = true
	c.mu.Unlock()

	netcodelog.Connected(c.runCtx, c.publisher, 0, uint32(payload.PlayerID))
	close(c.connected)
}

// handleHeartbeatResp feeds the clock estimator one round-trip sample.
func (c *Client[W, I]) handleHeartbeatResp(raw json.RawMessage) {
	var payload wire.HeartbeatRespPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	clientSend := time.Unix(0, payload.ClientSendUnixNano)
	serverRecv := time.Unix(0, payload.ServerRecvUnixNano)
	c.clock.Record(clientSend, serverRecv, time.Now())

	if ping, clockErr, ok := c.clock.Analytics(); ok {
		c.metrics.SetClockEstimate(clockErr, ping, 0)
	}
}

// handleAuthInput implements §4.5's AuthInput case in full: prefix
// extension + ack, per-tick authoritative inserts, hint merges for the
// ticks beyond the message's authoritative run, and the gap-fill request.
func (c *Client[W, I]) handleAuthInput(raw json.RawMessage) {
	var payload wire.AuthInputPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	codec := c.sim.Codec()

	c.mu.Lock()
	defer c.mu.Unlock()

	headTick := payload.HeadTick
	newestTick := headTick + Tick(len(payload.Auth)) - 1
	if len(payload.Auth) > 0 && headTick <= c.maxAuthTick+1 && c.maxAuthTick < newestTick {
		c.maxAuthTick = newestTick
		c.send(c.runCtx, wire.KindAck, wire.AckPayload{Tick: c.maxAuthTick})
	}

	for i, compact := range payload.Auth {
		t := headTick + Tick(i)
		inner, err := wire.DecodeInputMap[I](codec, compact)
		if err != nil {
			continue
		}
		if err := c.inputs.InsertAuth(t, inner); err != nil {
			netcodelog.DuplicateAuthInsert(c.runCtx, c.publisher, uint64(int64(t)))
			continue
		}
	}

	hintStart := newestTick + 1
	for i, compact := range payload.Hints {
		t := hintStart + Tick(i)
		inner, err := wire.DecodeInputMap[I](codec, compact)
		if err != nil {
			continue
		}
		c.inputs.MergeHint(t, inner, c.myPlayerID, c.havePlayerID)
	}

	c.requestMissingLocked()
}

// handleHintInput implements §4.5's HintInput case: a single speculative
// cell upsert.
func (c *Client[W, I]) handleHintInput(raw json.RawMessage) {
	var payload wire.HintInputPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	in, err := c.sim.Codec().Decode(payload.Input)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.inputs.InsertHintOne(payload.Tick, payload.PlayerID, in)
	c.mu.Unlock()
}

// requestMissingLocked implements §4.5 point 4: find ticks strictly
// between MaxAuthTick and the store's highest-seen authoritative key that
// are still missing, and ask for up to MaxRequestAuthInputs of them.
// Callers must hold c.mu.
func (c *Client[W, I]) requestMissingLocked() {
	maxKey := c.inputs.MaxAuthKey()
	missing := make([]Tick, 0, c.cfg.MaxRequestAuthInputs)
	for t := c.maxAuthTick + 1; t < maxKey; t++ {
		if _, ok := c.inputs.LookupAuth(t); ok {
			continue
		}
		missing = append(missing, t)
		if len(missing) >= c.cfg.MaxRequestAuthInputs {
			break
		}
	}
	if len(missing) == 0 {
		return
	}

	traceID := uuid.NewString()
	ticksForLog := make([]int64, len(missing))
	for i, t := range missing {
		ticksForLog[i] = int64(t)
	}
	netcodelog.RequestAuthInputSent(c.runCtx, c.publisher, uint64(int64(c.maxAuthTick)), ticksForLog, traceID)

	c.send(c.runCtx, wire.KindRequestAuthInput, wire.RequestAuthInputPayload{Ticks: missing})
}
