// Package store holds the two mutable maps the engine accumulates over the
// life of a Client: authoritative/hint inputs per tick, and authoritative
// world snapshots per tick.
//
// Per the engine's concurrency design (a single mutex-protected state
// record covers the stores read/written together — see the rollback engine
// and receive loop), neither type here does its own locking. Callers must
// serialize access externally; these types only enforce the monotonicity
// and merge invariants the specification requires.
package store

import "netcode/tick"

// Tick and PlayerID alias the shared identifier types so callers of this
// package never need a second import.
type (
	Tick     = tick.Tick
	PlayerID = tick.PlayerID
)

// ErrDuplicateAuth is returned by InsertAuth when the tick already has an
// authoritative entry. Authoritative data is idempotent by invariant:
// the caller should log this and drop the incoming message.
var ErrDuplicateAuth = duplicateAuthError{}

type duplicateAuthError struct{}

func (duplicateAuthError) Error() string { return "netcode/store: duplicate authoritative insert" }

// InputStore holds AuthInputs and HintInputs keyed by Tick, as described in
// the data model: AuthInputs entries are monotonic and never modified once
// inserted; HintInputs entries may be revised, but a caller's own hint for
// a tick always survives a merge.
type InputStore[I any] struct {
	auth    map[Tick]map[PlayerID]I
	hint    map[Tick]map[PlayerID]I
	maxAuth Tick
	hasAuth bool
}

// New returns an InputStore seeded with the tick-0 empty authoritative
// entry, per the AuthInputs invariant.
func New[I any]() *InputStore[I] {
	s := &InputStore[I]{
		auth: make(map[Tick]map[PlayerID]I),
		hint: make(map[Tick]map[PlayerID]I),
	}
	s.auth[0] = map[PlayerID]I{}
	s.hasAuth = true
	return s
}

// InsertAuth records the authoritative inputs for tick t. It returns
// ErrDuplicateAuth if t already has an authoritative entry; the map passed
// in that case is discarded untouched.
func (s *InputStore[I]) InsertAuth(t Tick, inner map[PlayerID]I) error {
	if _, exists := s.auth[t]; exists {
		return ErrDuplicateAuth
	}
	s.auth[t] = inner
	if !s.hasAuth || t > s.maxAuth {
		s.maxAuth = t
		s.hasAuth = true
	}
	return nil
}

// MergeHint merges newHints into tick t's hint entry. If no entry exists,
// newHints becomes the entry. Otherwise the merge resolves key collisions
// in this order: self's prior hint wins, then newHints, then any other
// prior hint — "we trust our own input more than another client's hint".
// hasSelf/self identify the local player whose prior hint must survive;
// pass hasSelf=false before MyPlayerID is known.
func (s *InputStore[I]) MergeHint(t Tick, newHints map[PlayerID]I, self PlayerID, hasSelf bool) {
	existing, ok := s.hint[t]
	if !ok {
		merged := make(map[PlayerID]I, len(newHints))
		for k, v := range newHints {
			merged[k] = v
		}
		s.hint[t] = merged
		return
	}

	merged := make(map[PlayerID]I, len(existing)+len(newHints))
	if hasSelf {
		if v, ok := existing[self]; ok {
			merged[self] = v
		}
	}
	for k, v := range newHints {
		if _, present := merged[k]; !present {
			merged[k] = v
		}
	}
	for k, v := range existing {
		if _, present := merged[k]; !present {
			merged[k] = v
		}
	}
	s.hint[t] = merged
}

// InsertHintOne upserts a single player's hint cell at tick t.
func (s *InputStore[I]) InsertHintOne(t Tick, p PlayerID, in I) {
	m, ok := s.hint[t]
	if !ok {
		m = make(map[PlayerID]I, 1)
		s.hint[t] = m
	}
	m[p] = in
}

// LookupAuth returns the authoritative inner map for t, if any. The
// returned map must be treated as read-only: it is the store's own copy.
func (s *InputStore[I]) LookupAuth(t Tick) (map[PlayerID]I, bool) {
	m, ok := s.auth[t]
	return m, ok
}

// LookupHint returns the hint inner map for t, if any. Read-only, as above.
func (s *InputStore[I]) LookupHint(t Tick) (map[PlayerID]I, bool) {
	m, ok := s.hint[t]
	return m, ok
}

// MaxAuthKey returns the largest tick for which an authoritative entry
// exists, regardless of whether the prefix up to it is unbroken. Tick 0
// is always present, so this always succeeds.
func (s *InputStore[I]) MaxAuthKey() Tick {
	return s.maxAuth
}
