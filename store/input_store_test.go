package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestInputStoreSeedsTickZero(t *testing.T) {
	s := New[string]()
	inner, ok := s.LookupAuth(0)
	if !ok {
		t.Fatal("expected tick 0 to be present")
	}
	if len(inner) != 0 {
		t.Fatalf("expected empty inner map at tick 0, got %v", inner)
	}
	if got := s.MaxAuthKey(); got != 0 {
		t.Fatalf("expected MaxAuthKey()==0, got %d", got)
	}
}

func TestInsertAuthDuplicateRejected(t *testing.T) {
	s := New[string]()
	if err := s.InsertAuth(1, map[PlayerID]string{1: "a"}); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}
	err := s.InsertAuth(1, map[PlayerID]string{1: "b"})
	if !errors.Is(err, ErrDuplicateAuth) {
		t.Fatalf("expected ErrDuplicateAuth, got %v", err)
	}
	inner, _ := s.LookupAuth(1)
	if inner[1] != "a" {
		t.Fatalf("duplicate insert must not overwrite, got %v", inner)
	}
}

func TestInsertAuthAdvancesMaxAuthKey(t *testing.T) {
	s := New[string]()
	s.InsertAuth(5, map[PlayerID]string{})
	if got := s.MaxAuthKey(); got != 5 {
		t.Fatalf("expected MaxAuthKey()==5, got %d", got)
	}
	// A lower-numbered insert afterward must not regress MaxAuthKey.
	s.InsertAuth(2, map[PlayerID]string{})
	if got := s.MaxAuthKey(); got != 5 {
		t.Fatalf("MaxAuthKey regressed to %d", got)
	}
}

func TestMergeHintNoExistingEntry(t *testing.T) {
	s := New[string]()
	s.MergeHint(10, map[PlayerID]string{2: "up"}, 1, true)
	got, ok := s.LookupHint(10)
	if !ok || got[2] != "up" {
		t.Fatalf("expected hint stored verbatim, got %v", got)
	}
}

func TestMergeHintSelfWins(t *testing.T) {
	s := New[string]()
	s.InsertHintOne(10, 1, "self-jump")
	// Incoming hint from the server tries to override the local player's
	// own predicted input for the same tick; it must lose.
	s.MergeHint(10, map[PlayerID]string{1: "server-guess", 2: "right"}, 1, true)
	got, _ := s.LookupHint(10)
	if got[1] != "self-jump" {
		t.Fatalf("self hint must be preserved, got %v", got[1])
	}
	if got[2] != "right" {
		t.Fatalf("expected incoming hint for other player, got %v", got[2])
	}
}

func TestMergeHintFallsBackToPriorForOtherPlayers(t *testing.T) {
	s := New[string]()
	s.InsertHintOne(10, 3, "old-guess")
	s.MergeHint(10, map[PlayerID]string{2: "right"}, 1, true)
	got, _ := s.LookupHint(10)
	want := map[PlayerID]string{2: "right", 3: "old-guess"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMergeHintWithoutSelfKnown(t *testing.T) {
	s := New[string]()
	s.MergeHint(10, map[PlayerID]string{2: "right"}, 0, false)
	s.MergeHint(10, map[PlayerID]string{2: "left", 3: "jump"}, 0, false)
	got, _ := s.LookupHint(10)
	want := map[PlayerID]string{2: "left", 3: "jump"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInsertHintOneUpsertsSingleCell(t *testing.T) {
	s := New[string]()
	s.InsertHintOne(4, 1, "a")
	s.InsertHintOne(4, 2, "b")
	s.InsertHintOne(4, 1, "a2")
	got, _ := s.LookupHint(4)
	want := map[PlayerID]string{1: "a2", 2: "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
