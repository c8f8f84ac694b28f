// Package netcode implements the client-side core of a rollback/replay
// lockstep networking engine: input storage, authoritative-world caching,
// clock-sync consumption, and the predict/rollback sampling loop.
package netcode

import "netcode/tick"

// Tick and PlayerID are re-exported from netcode/tick so application code
// only ever needs to import the root package; netcode/tick exists as its
// own dependency-free package so internal packages (store, clocksync, wire)
// can share the identifier types without importing this package back.
type (
	Tick     = tick.Tick
	PlayerID = tick.PlayerID
)
