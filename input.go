package netcode

import (
	"time"

	"netcode/wire"
)

// SetInput implements C8: it records the local player's latest input and,
// if the clock estimator's target tick (with FixedInputLatency added) has
// advanced past the last tick submitted, inserts the input as a local hint
// — giving the local player zero perceived input latency — and schedules
// it for transmission.
//
// Intervening ticks between the previous submission and the new target
// are deliberately left empty: other clients carry forward the previous
// input for them, matching the predictor's own assumption.
func (c *Client[W, I]) SetInput(input I) {
	target := c.clock.EstimateTargetTick(time.Now(), c.cfg.FixedInputLatency)

	c.mu.Lock()
	c.currentInput = input
	c.haveCurrentInput = true

	shouldSend := !c.haveLastSubmitted || target > c.lastSubmittedTick
	if shouldSend {
		c.lastSubmittedTick = target
		c.haveLastSubmitted = true
		c.inputs.InsertHintOne(target, c.myPlayerID, input)
	}
	c.mu.Unlock()

	if !shouldSend {
		return
	}

	raw, err := c.sim.Codec().Encode(input)
	if err != nil {
		panicInvariant("encode input: %v", err)
	}
	c.send(c.runCtx, wire.KindSubmitInput, wire.SubmitInputPayload{Tick: target, Input: raw})
	c.metrics.RecordInputSubmitted()
}
