package netcode

import "context"

// Transport is the opaque, best-effort message channel the engine sends
// and receives wire envelopes over. Implementations may drop or reorder
// messages (a UDP-like datagram layer); the engine's recovery — heartbeats
// and gap-fill requests — is built assuming exactly that, never a reliable
// transport underneath.
//
// See netcode/wstransport for a concrete implementation over
// gorilla/websocket.
type Transport interface {
	// Send transmits one wire-encoded envelope. A returned error is
	// treated as packet loss: the engine does not retry or surface it.
	Send(ctx context.Context, data []byte) error

	// Recv blocks until the next inbound envelope arrives, ctx is
	// cancelled, or the transport is closed.
	Recv(ctx context.Context) ([]byte, error)

	// Close releases the transport's resources and unblocks any pending
	// Recv call.
	Close() error
}
