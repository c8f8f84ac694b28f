package netcode

import (
	"encoding/json"
	"sort"

	"netcode/wire"
)

// intCodec is the simplest possible Codec[int]: plain JSON numbers.
type intCodec struct{}

func (intCodec) Encode(v int) ([]byte, error) { return json.Marshal(v) }
func (intCodec) Decode(b []byte) (int, error) {
	var v int
	err := json.Unmarshal(b, &v)
	return v, err
}

// testWorld is a toy authoritative state: each player's running position,
// the sum of every input (delta) they've ever submitted.
type testWorld struct {
	Tick int64            `json:"tick"`
	Pos  map[PlayerID]int `json:"pos"`
}

func cloneTestWorld(w testWorld) testWorld {
	next := testWorld{Tick: w.Tick, Pos: make(map[PlayerID]int, len(w.Pos))}
	for p, v := range w.Pos {
		next.Pos[p] = v
	}
	return next
}

// testSim implements Simulation[testWorld, int]: Step adds each player's
// input to their running position, visiting players in PlayerID order so
// the result is identical regardless of map iteration order.
type testSim struct{}

func (testSim) World0() testWorld { return testWorld{Pos: map[PlayerID]int{}} }
func (testSim) Input0() int       { return 0 }

func (testSim) Step(inputs map[PlayerID]InputPair[int], tick Tick, prev testWorld) testWorld {
	next := cloneTestWorld(prev)
	next.Tick = int64(tick)

	ids := make([]PlayerID, 0, len(inputs))
	for p := range inputs {
		ids = append(ids, p)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, p := range ids {
		next.Pos[p] += inputs[p].Next
	}
	return next
}

func (testSim) Codec() wire.Codec[int] { return intCodec{} }

// authInputPayload builds an AuthInputPayload from decoded per-tick input
// maps, encoding them through the same codec testSim uses.
func authInputPayload(head Tick, auth []map[PlayerID]int, hints []map[PlayerID]int) (wire.AuthInputPayload, error) {
	codec := intCodec{}
	compactAuth := make([]wire.CompactInputMap, len(auth))
	for i, m := range auth {
		cm, err := wire.EncodeInputMap[int](codec, m)
		if err != nil {
			return wire.AuthInputPayload{}, err
		}
		compactAuth[i] = cm
	}
	var compactHints []wire.CompactInputMap
	if len(hints) > 0 {
		compactHints = make([]wire.CompactInputMap, len(hints))
		for i, m := range hints {
			cm, err := wire.EncodeInputMap[int](codec, m)
			if err != nil {
				return wire.AuthInputPayload{}, err
			}
			compactHints[i] = cm
		}
	}
	return wire.AuthInputPayload{HeadTick: head, Auth: compactAuth, Hints: compactHints}, nil
}

func hintInputPayload(tick Tick, player PlayerID, input int) (wire.HintInputPayload, error) {
	raw, err := intCodec{}.Encode(input)
	if err != nil {
		return wire.HintInputPayload{}, err
	}
	return wire.HintInputPayload{Tick: tick, PlayerID: player, Input: raw}, nil
}
