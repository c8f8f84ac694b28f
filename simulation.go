package netcode

import "netcode/wire"

// InputPair bundles a player's previous and next input, the shape the
// application's step function consumes: step(inputs: map<PlayerId,
// (prevInput, currentInput)>, tick, prevWorld) -> world.
type InputPair[I any] struct {
	Prev I
	Next I
}

// Simulation bundles everything the engine needs from the application: the
// deterministic step function, the zero/default input and world values,
// and the wire codec for Input. World and Input are opaque to the engine
// beyond these four members (Design Notes: "polymorphism over world and
// input").
type Simulation[W any, I any] interface {
	// World0 returns the shared initial world value at tick 0.
	World0() W

	// Input0 returns the default input substituted for a player with no
	// recorded input yet.
	Input0() I

	// Step advances prevWorld by one tick given the paired input map keyed
	// by PlayerID. If the computation's result depends on map iteration
	// order, implementations MUST iterate keys in a stable order (sorted
	// by PlayerID) so independently-running clients compute identical
	// worlds from identical input.
	Step(inputs map[PlayerID]InputPair[I], tick Tick, prevWorld W) W

	// Codec serializes/deserializes Input for the wire.
	Codec() wire.Codec[I]
}
