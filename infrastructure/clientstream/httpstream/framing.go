// Package httpstream implements the HTTP/WebSocket Client Stream
// framing (spec §4.4): each Write is one binary WebSocket message,
// each Read returns bytes from at most one inbound binary message (a
// message longer than the buffer is continued by the next Read).
// Because the
// underlying github.com/coder/websocket connection survives a logical
// stream's disposal, CreateReuse simply opens a fresh Framing over the
// same *websocket.Conn — no new handshake, exactly what spec §4.4
// calls "producing a fresh inner stream" over the socket.
//
// Grounded on the teacher's infrastructure/network/ws.Adapter, reduced
// to the message-per-call shape this framing wants instead of the
// Adapter's net.Conn-style streaming reassembly.
package httpstream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/coder/websocket"

	"sessioncore/application/clientstream"
)

var _ clientstream.Framed = (*Framing)(nil)
var _ clientstream.FramedReusable = (*Framing)(nil)

// Framing wraps one github.com/coder/websocket connection. Multiple
// Framing values may exist over the same *websocket.Conn across a
// reuse handoff, but only one is ever live (reading/writing) at a
// time — enforced by the clientstream.Stream disposal state machine,
// not by this type.
type Framing struct {
	conn *websocket.Conn
	ctx  context.Context

	wmu sync.Mutex
	cur io.Reader
}

func NewFraming(ctx context.Context, conn *websocket.Conn) *Framing {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Framing{conn: conn, ctx: ctx}
}

func (f *Framing) Write(p []byte) (int, error) {
	f.wmu.Lock()
	defer f.wmu.Unlock()

	wr, err := f.conn.Writer(f.ctx, websocket.MessageBinary)
	if err != nil {
		return 0, mapErr(err)
	}
	off := 0
	for off < len(p) {
		n, werr := wr.Write(p[off:])
		off += n
		if werr != nil {
			_ = wr.Close()
			return off, mapErr(werr)
		}
	}
	if cerr := wr.Close(); cerr != nil {
		return off, mapErr(cerr)
	}
	return off, nil
}

func (f *Framing) Read(p []byte) (int, error) {
	for {
		if f.cur != nil {
			n, err := f.cur.Read(p)
			if err == io.EOF {
				f.cur = nil
				if n > 0 {
					return n, nil
				}
				continue
			}
			return n, mapErr(err)
		}
		mt, r, err := f.conn.Reader(f.ctx)
		if err != nil {
			return 0, mapErr(err)
		}
		if mt != websocket.MessageBinary {
			_, _ = io.Copy(io.Discard, r)
			continue
		}
		f.cur = r
	}
}

// CreateReuse produces a fresh Framing over the same socket, used by
// the disposal state machine's reuse path (spec §4.4).
func (f *Framing) CreateReuse(ctx context.Context) (clientstream.Framed, error) {
	if ctx == nil {
		ctx = f.ctx
	}
	return NewFraming(ctx, f.conn), nil
}

func (f *Framing) Close() error { return f.conn.Close(websocket.StatusNormalClosure, "") }

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return io.EOF
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return err
}

// Liveness probes a WebSocket connection with a control-frame ping,
// the closest WebSocket equivalent of the TCP SO_ERROR probe (spec
// §4.4 "Liveness check").
type Liveness struct {
	conn *websocket.Conn
}

func NewLiveness(conn *websocket.Conn) *Liveness { return &Liveness{conn: conn} }

func (l *Liveness) IsAlive() bool {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return l.conn.Ping(ctx) == nil
}

const pingTimeout = 2 * time.Second
