package netcode

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"netcode/logging"
	"netcode/wire"
)

// connectedTestClient drives the S1 handshake against a fakeTransport and
// returns the resulting Client, already assigned playerID. publisher may be
// nil, in which case Connect falls back to logging.NopPublisher{}.
func connectedTestClient(t *testing.T, playerID PlayerID, cfg Config, publisher logging.Publisher) (*Client[testWorld, int], *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)

	type outcome struct {
		c   *Client[testWorld, int]
		err error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		c, err := Connect[testWorld, int](ctx, ft, testSim{}, cfg, publisher)
		resultCh <- outcome{c, err}
	}()

	waitForKind(t, ft, wire.KindConnect, time.Second)
	injectEnvelope(t, ft, wire.KindConnected, wire.ConnectedPayload{PlayerID: playerID})

	res := <-resultCh
	if res.err != nil {
		t.Fatalf("connect: %v", res.err)
	}
	t.Cleanup(func() { res.c.Close() })
	return res.c, ft
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TickRate = 5
	cfg.HeartbeatIntervalBeforeSync = 5 * time.Millisecond
	cfg.HeartbeatIntervalAfterSync = 20 * time.Millisecond
	return cfg
}

// S1: Connect performs the handshake and assigns PlayerID before returning.
func TestConnectHandshake(t *testing.T) {
	c, ft := connectedTestClient(t, 7, testConfig(), nil)
	if c.PlayerID() != 7 {
		t.Fatalf("PlayerID() = %d, want 7", c.PlayerID())
	}

	// A steady-state heartbeat must keep flowing.
	waitForKind(t, ft, wire.KindHeartbeat, time.Second)

	world := c.Sample()
	if len(world.Pos) != 0 {
		t.Fatalf("expected empty initial world, got %+v", world.Pos)
	}
}

// S2: once an authoritative input arrives for a tick that was previously
// only a hint, Sample must reflect the authoritative value, not the hint.
func TestRollbackReplacesHintWithAuth(t *testing.T) {
	cfg := testConfig()
	c, ft := connectedTestClient(t, 1, cfg, nil)

	// Speculative hint: player 2 moves +100 at tick 1 (wrong, for contrast).
	hint, err := hintInputPayload(1, 2, 100)
	if err != nil {
		t.Fatalf("hintInputPayload: %v", err)
	}
	injectEnvelope(t, ft, wire.KindHintInput, hint)

	// Give the receive loop a moment to apply it, then let real time pass so
	// Sample's target tick reaches at least tick 1.
	time.Sleep(250 * time.Millisecond)

	// Authoritative correction: player 2 actually moved +1 at tick 1.
	auth, err := authInputPayload(1, []map[PlayerID]int{{2: 1}}, nil)
	if err != nil {
		t.Fatalf("authInputPayload: %v", err)
	}
	injectEnvelope(t, ft, wire.KindAuthInput, auth)
	waitForKind(t, ft, wire.KindAck, time.Second)

	time.Sleep(100 * time.Millisecond)

	newWorlds, _ := c.SamplePair()
	if len(newWorlds) == 0 {
		t.Fatal("expected at least one newly-derived authoritative world")
	}
	// newWorlds[0] is the freshly-derived world at tick 1: the authoritative
	// +1 must have been applied, not the speculative +100 hint.
	if got := newWorlds[0].Pos[2]; got != 1 {
		t.Fatalf("Pos[2] at tick 1 = %d, want 1 (authoritative value should win over the earlier hint)", got)
	}
}

// S3: a duplicate authoritative insert for an already-filled tick must be
// logged and dropped, not applied twice and not crash the client.
func TestDuplicateAuthInsertIsIgnored(t *testing.T) {
	cfg := testConfig()
	c, ft := connectedTestClient(t, 1, cfg, nil)

	auth, err := authInputPayload(1, []map[PlayerID]int{{1: 5}}, nil)
	if err != nil {
		t.Fatalf("authInputPayload: %v", err)
	}
	injectEnvelope(t, ft, wire.KindAuthInput, auth)
	waitForKind(t, ft, wire.KindAck, time.Second)

	// Resend the identical message for the same tick.
	injectEnvelope(t, ft, wire.KindAuthInput, auth)

	time.Sleep(200 * time.Millisecond)

	// The client must still be alive and sampling normally; position must
	// reflect the input exactly once (5), not twice (10).
	_, world := c.SamplePair()
	if got := world.Pos[1]; got != 5 {
		t.Fatalf("Pos[1] = %d, want 5 (duplicate insert must not double-apply)", got)
	}
}

// S4: a gap in the authoritative sequence triggers a RequestAuthInput
// naming exactly the missing ticks.
func TestGapTriggersRequestAuthInput(t *testing.T) {
	cfg := testConfig()
	_, ft := connectedTestClient(t, 1, cfg, nil)

	auth := make([]map[PlayerID]int, 10)
	for i := range auth {
		auth[i] = map[PlayerID]int{1: 1}
	}
	payload, err := authInputPayload(10, auth, nil)
	if err != nil {
		t.Fatalf("authInputPayload: %v", err)
	}
	injectEnvelope(t, ft, wire.KindAuthInput, payload)

	raw := waitForKind(t, ft, wire.KindRequestAuthInput, time.Second)
	var req wire.RequestAuthInputPayload
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	want := []Tick{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if len(req.Ticks) != len(want) {
		t.Fatalf("requested ticks = %v, want %v", req.Ticks, want)
	}
	for i, tk := range want {
		if req.Ticks[i] != tk {
			t.Fatalf("requested ticks = %v, want %v", req.Ticks, want)
		}
	}
}

// S5: once the client falls behind the clock target by more than
// ResyncThresholdTicks with no authoritative progress, prediction is
// disabled entirely and Sample must not invent ticks past the last known
// authoritative world.
func TestResyncDisablesPrediction(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = 50 // advance the wall-clock target quickly
	cfg.ResyncThresholdTicks = 2
	c, _ := connectedTestClient(t, 1, cfg, nil)

	// Let enough real time pass that the target tick is far beyond
	// MaxAuthTick (which never moves past 0: no AuthInput is ever sent).
	time.Sleep(150 * time.Millisecond)

	newWorlds, world := c.SamplePair()
	if len(newWorlds) != 0 {
		t.Fatalf("expected no newly-derived worlds while resync is engaged, got %d", len(newWorlds))
	}
	if len(world.Pos) != 0 {
		t.Fatalf("expected world unchanged from tick 0 while resync is engaged, got %+v", world.Pos)
	}

	if !c.ResyncPending() {
		t.Fatal("expected ResyncPending to report true before the signal is drained")
	}

	sig, ok := c.ResyncSignal()
	if !ok {
		t.Fatal("expected a resync signal to have been recorded")
	}
	if sig.BehindTicks <= int64(cfg.ResyncThresholdTicks) {
		t.Fatalf("BehindTicks = %d, want > %d", sig.BehindTicks, cfg.ResyncThresholdTicks)
	}
	if c.ResyncPending() {
		t.Fatal("expected ResyncPending to report false after ResyncSignal drains it")
	}
}

// S6: a locally-submitted input is visible in the very next Sample call,
// before any server round trip — zero perceived self-input latency.
func TestSetInputIsImmediatelyPredicted(t *testing.T) {
	cfg := testConfig()
	c, ft := connectedTestClient(t, 9, cfg, nil)

	// Let the clock estimator's target tick move past 0 first: a hint
	// placed exactly at tick 0 would be masked by Sample's floor-equals-
	// target short-circuit, which is irrelevant to what this test checks.
	time.Sleep(250 * time.Millisecond)

	c.SetInput(42)
	waitForKind(t, ft, wire.KindSubmitInput, time.Second)

	world := c.Sample()
	if got := world.Pos[9]; got != 42 {
		t.Fatalf("Pos[9] = %d, want 42 (self input should be predicted immediately)", got)
	}
}
