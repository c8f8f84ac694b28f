// Package tick defines the foundational identifier types shared by every
// other package in the engine: the monotonic simulation Tick and the
// server-assigned PlayerID.
package tick

import "fmt"

// Tick is a monotonic simulation step counter shared by every participant.
// Tick 0 is the initial state all clients agree on before any input arrives.
type Tick int64

// Add advances t by n simulation steps. n may be negative.
func (t Tick) Add(n int64) Tick { return t + Tick(n) }

// Sub returns the number of steps between t and other (t - other).
func (t Tick) Sub(other Tick) int64 { return int64(t - other) }

// Before reports whether t comes strictly before other.
func (t Tick) Before(other Tick) bool { return t < other }

// After reports whether t comes strictly after other.
func (t Tick) After(other Tick) bool { return t > other }

func (t Tick) String() string { return fmt.Sprintf("tick(%d)", int64(t)) }

// PlayerID is assigned by the server on connect and constant thereafter.
type PlayerID uint32

func (p PlayerID) String() string { return fmt.Sprintf("player(%d)", uint32(p)) }
