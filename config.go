package netcode

import "time"

// Config holds the tunable knobs recognized by the engine. TickRate must
// match the server's tick rate; the rest govern prediction/resync policy.
type Config struct {
	// TickRate is simulation ticks per second. Determines packet rate and is
	// used to convert clock-estimator output into wall-clock scheduling.
	TickRate float64

	// FixedInputLatency is added to the target tick used when submitting
	// local input, giving the network extra time to deliver it before peers
	// simulate that tick. Typical range 0.0-0.1 seconds.
	FixedInputLatency time.Duration

	// MaxPredictionTicks bounds how many speculative ticks beyond the last
	// authoritative world the client is willing to simulate per sample.
	// Defaults to TickRate/2 when zero.
	MaxPredictionTicks int

	// ResyncThresholdTicks: once the client falls this many ticks behind the
	// clock-estimator target, prediction is disabled so CPU goes entirely to
	// catching up. Defaults to TickRate*3 when zero.
	ResyncThresholdTicks int

	// HeartbeatIntervalBeforeSync is how often Connect/Heartbeat messages are
	// sent before the clock estimator has produced analytics.
	HeartbeatIntervalBeforeSync time.Duration

	// HeartbeatIntervalAfterSync is the steady-state heartbeat cadence.
	HeartbeatIntervalAfterSync time.Duration

	// MaxRequestAuthInputs bounds how many missing ticks a single
	// RequestAuthInput message may name, preventing amplification when the
	// client is far behind.
	MaxRequestAuthInputs int
}

// DefaultConfig mirrors the values called out in the specification: a 20Hz
// tick rate, no extra input latency, half a second of prediction, three
// seconds of resync tolerance, and a 32-tick request cap.
func DefaultConfig() Config {
	const tickRate = 20.0
	return Config{
		TickRate:                    tickRate,
		FixedInputLatency:           0,
		MaxPredictionTicks:          int(tickRate / 2),
		ResyncThresholdTicks:        int(tickRate * 3),
		HeartbeatIntervalBeforeSync: 50 * time.Millisecond,
		HeartbeatIntervalAfterSync:  500 * time.Millisecond,
		MaxRequestAuthInputs:        32,
	}
}

// normalized returns a copy of cfg with zero-valued fields replaced by their
// tick-rate-derived defaults, so callers may supply a partial Config.
func (cfg Config) normalized() Config {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.MaxPredictionTicks <= 0 {
		cfg.MaxPredictionTicks = int(cfg.TickRate / 2)
	}
	if cfg.ResyncThresholdTicks <= 0 {
		cfg.ResyncThresholdTicks = int(cfg.TickRate * 3)
	}
	if cfg.HeartbeatIntervalBeforeSync <= 0 {
		cfg.HeartbeatIntervalBeforeSync = 50 * time.Millisecond
	}
	if cfg.HeartbeatIntervalAfterSync <= 0 {
		cfg.HeartbeatIntervalAfterSync = 500 * time.Millisecond
	}
	if cfg.MaxRequestAuthInputs <= 0 {
		cfg.MaxRequestAuthInputs = 32
	}
	return cfg
}
