package netcode

import (
	"time"

	netcodelog "netcode/logging/netcode"
)

// Sample is the convenience single-value form of SamplePair: it discards
// the list of newly authoritative worlds and returns only the predicted
// world at the current target tick.
func (c *Client[W, I]) Sample() W {
	_, w := c.SamplePair()
	return w
}

// SamplePair implements C7: it picks a base snapshot, re-simulates forward
// applying authoritative then hint inputs up to the clock estimator's
// current target tick, bounded by the prediction allowance, and returns
// every authoritative world derived since the last call alongside the
// predicted world at the target tick.
func (c *Client[W, I]) SamplePair() ([]W, W) {
	target := c.clock.EstimateTargetTick(time.Now(), 0)

	c.mu.Lock()
	defer c.mu.Unlock()

	startTick, startWorld := c.worlds.FloorEntry(target)
	startInputs, ok := c.inputs.LookupAuth(startTick)
	if !ok {
		panicInvariant("no authoritative input entry at floor tick %s", startTick)
	}

	if target <= startTick {
		return nil, startWorld
	}

	behind := target.Sub(c.maxAuthTick)
	engaged := behind > int64(c.cfg.ResyncThresholdTicks)

	predictionAllowance := c.cfg.MaxPredictionTicks
	if engaged {
		predictionAllowance = 0
		c.resync.NoteEvent()
		c.resync.NoteBehind(behind, "resync_threshold", "target behind MaxAuthTick past ResyncThresholdTicks")
	}
	c.noteResyncTransitionLocked(engaged, behind, target)

	world := startWorld
	currentInputs := startInputs
	t := startTick
	wasAuthPath := true

	input0 := c.sim.Input0()

	for t < target {
		tNext := t.Add(1)
		authNext, hasAuthNext := c.inputs.LookupAuth(tNext)
		isAuthPath := wasAuthPath && hasAuthNext

		if !isAuthPath && predictionAllowance == 0 {
			break
		}

		var inputsNext map[PlayerID]I
		if hasAuthNext {
			inputsNext = authNext
		} else {
			hintsNext, _ := c.inputs.LookupHint(tNext)
			inputsNext = carryForward(currentInputs, hintsNext)
		}

		paired := pairInputs(currentInputs, inputsNext, input0)
		world = c.sim.Step(paired, tNext, world)

		if isAuthPath {
			c.worlds.InsertDerived(tNext, world)
			c.metrics.RecordAuthTickApplied()
		} else {
			predictionAllowance--
		}

		currentInputs = inputsNext
		t = tNext
		wasAuthPath = isAuthPath
	}

	c.metrics.SetPredictionAllowance(int64(predictionAllowance))

	maxKey := c.worlds.MaxKey()
	var newWorlds []W
	for tt := c.lastSampledAuthWorldTick + 1; tt <= maxKey; tt++ {
		if w, ok := c.worlds.Get(tt); ok {
			newWorlds = append(newWorlds, w)
		}
	}
	c.lastSampledAuthWorldTick = maxKey

	if len(newWorlds) > 0 {
		c.metrics.RecordRollback(target.Sub(startTick))
	}

	return newWorlds, world
}

// noteResyncTransitionLocked emits lifecycle events and a telemetry
// counter bump exactly on the edges of the resync-engaged state, rather
// than once per sample while it holds. Callers must hold c.mu.
func (c *Client[W, I]) noteResyncTransitionLocked(engaged bool, behindTicks int64, target Tick) {
	if engaged == c.resyncEngaged {
		return
	}
	c.resyncEngaged = engaged
	tick := uint64(int64(target))
	if engaged {
		c.metrics.RecordResync()
		netcodelog.ResyncEngaged(c.runCtx, c.publisher, tick, behindTicks)
		return
	}
	netcodelog.ResyncRecovered(c.runCtx, c.publisher, tick)
}

// carryForward builds the input map for a predicted tick: known hints win,
// everything else repeats the player's previous input (Design Notes §9).
// The key set is the union of prevInputs and hints; resolving a player
// with truly no prior input to input0 is pairInputs' job, not this one.
func carryForward[I any](prevInputs, hints map[PlayerID]I) map[PlayerID]I {
	out := make(map[PlayerID]I, len(prevInputs)+len(hints))
	for p, in := range hints {
		out[p] = in
	}
	for p, in := range prevInputs {
		if _, ok := out[p]; !ok {
			out[p] = in
		}
	}
	return out
}

// pairInputs builds the (prev, next) pairs the step function consumes,
// over the keys present in nextInputs. A player missing from prevInputs
// falls back to input0 for their previous value.
func pairInputs[I any](prevInputs, nextInputs map[PlayerID]I, input0 I) map[PlayerID]InputPair[I] {
	out := make(map[PlayerID]InputPair[I], len(nextInputs))
	for p, next := range nextInputs {
		prev, ok := prevInputs[p]
		if !ok {
			prev = input0
		}
		out[p] = InputPair[I]{Prev: prev, Next: next}
	}
	return out
}
