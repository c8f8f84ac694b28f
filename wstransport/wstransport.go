// Package wstransport implements netcode.Transport over
// github.com/gorilla/websocket: one read pump goroutine feeds inbound
// frames into a buffered channel, and writes are serialized behind a
// mutex since gorilla's Conn forbids concurrent writers. This mirrors the
// read/write loop structure of the teacher's session handler, adapted
// from a server-side accept loop to a client-side dialer.
package wstransport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WSTransport is a netcode.Transport bound to one websocket connection.
type WSTransport struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	incoming chan []byte
	readErr  chan error

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial opens a websocket connection to url and returns a Transport over it.
// header carries any additional handshake headers (e.g. auth tokens); pass
// nil for none.
func Dial(ctx context.Context, url string, header map[string][]string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("wstransport: dial %s: %w", url, err)
	}
	return newTransport(conn), nil
}

func newTransport(conn *websocket.Conn) *WSTransport {
	t := &WSTransport{
		conn:     conn,
		incoming: make(chan []byte, 64),
		readErr:  make(chan error, 1),
		closed:   make(chan struct{}),
	}
	go t.readPump()
	return t
}

func (t *WSTransport) readPump() {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case t.readErr <- err:
			default:
			}
			return
		}
		select {
		case t.incoming <- data:
		case <-t.closed:
			return
		}
	}
}

// Send implements netcode.Transport.
func (t *WSTransport) Send(ctx context.Context, data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = t.conn.SetWriteDeadline(deadline)
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Recv implements netcode.Transport.
func (t *WSTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data := <-t.incoming:
		return data, nil
	case err := <-t.readErr:
		return nil, err
	case <-t.closed:
		return nil, fmt.Errorf("wstransport: closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements netcode.Transport. It sends a best-effort close frame,
// then tears down the connection, unblocking the read pump and any
// pending Recv call.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.writeMu.Unlock()

		close(t.closed)
		err = t.conn.Close()
	})
	return err
}
