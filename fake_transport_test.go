package netcode

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"netcode/wire"
)

// fakeTransport is an in-memory Transport test double: two buffered
// channels stand in for the wire, letting a test play the role of the
// server without a real socket.
type fakeTransport struct {
	recvCh chan []byte
	sendCh chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		recvCh: make(chan []byte, 64),
		sendCh: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) Send(ctx context.Context, data []byte) error {
	select {
	case f.sendCh <- data:
		return nil
	case <-f.closed:
		return errors.New("fakeTransport: closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data := <-f.recvCh:
		return data, nil
	case <-f.closed:
		return nil, errors.New("fakeTransport: closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) injectInbound(t *testing.T, data []byte) {
	t.Helper()
	select {
	case f.recvCh <- data:
	case <-time.After(time.Second):
		t.Fatal("fakeTransport: inbound channel full")
	}
}

// waitForKind drains outbound frames until one of the given kind arrives,
// discarding anything else (e.g. periodic Connect/Heartbeat frames sent by
// the background loops while the test is waiting for something specific).
func waitForKind(t *testing.T, f *fakeTransport, kind wire.Kind, timeout time.Duration) json.RawMessage {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case data := <-f.sendCh:
			k, raw, err := wire.Unmarshal(data)
			if err != nil {
				t.Fatalf("waitForKind: unmarshal outbound: %v", err)
			}
			if k == kind {
				return raw
			}
		case <-deadline:
			t.Fatalf("waitForKind: timed out waiting for %s", kind)
		}
	}
}

func injectEnvelope(t *testing.T, f *fakeTransport, kind wire.Kind, payload any) {
	t.Helper()
	data, err := wire.Marshal(kind, payload)
	if err != nil {
		t.Fatalf("injectEnvelope: marshal: %v", err)
	}
	f.injectInbound(t, data)
}
