//go:build !js

// Listener upgrades inbound HTTP connections on one path to WebSocket
// and hands the raw *websocket.Conn to the caller through Accept,
// mirroring net.Listener so the session acceptance loop can treat it
// like any other transport. Grounded on the teacher's
// infrastructure/network/ws.Listener, reworked with a bounded
// admission wait instead of an immediate drop and a configurable
// shutdown deadline, since a VPN session manager would rather briefly
// stall a handshake than bounce it on a momentary backlog.
package httpstream

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// Accepted is one upgraded connection plus the endpoints the HTTP
// server observed for it — a *websocket.Conn alone has no RemoteAddr.
type Accepted struct {
	Conn   *websocket.Conn
	Local  net.Addr
	Remote net.Addr
}

// ReadLimitBytes bounds one WebSocket message; the same rationale as
// the teacher's MTU-derived SetReadLimit call, generalized to the
// protocol's own frame ceiling.
const ReadLimitBytes = 1 << 20

const (
	defaultAdmissionWait  = 500 * time.Millisecond
	defaultShutdownWindow = 3 * time.Second
	defaultQueueSize      = 1024
)

type Listener struct {
	ln     net.Listener
	srv    *http.Server
	queue  chan Accepted
	closed chan struct{}
	once   sync.Once

	admissionWait  time.Duration
	shutdownWindow time.Duration
	queueSize      int
	dropped        atomic.Int64
}

// Option configures a Listener beyond its defaults.
type Option func(*Listener)

// WithShutdownWindow overrides how long Close waits for in-flight
// upgrades to finish before forcing the listener closed.
func WithShutdownWindow(d time.Duration) Option {
	return func(l *Listener) { l.shutdownWindow = d }
}

// WithAdmissionWait overrides how long a freshly upgraded connection
// waits for room in the accept queue before being rejected.
func WithAdmissionWait(d time.Duration) Option {
	return func(l *Listener) { l.admissionWait = d }
}

// WithQueueSize overrides the accept queue's buffer size, mainly for
// tests that need to drive the queue full deterministically.
func WithQueueSize(n int) Option {
	return func(l *Listener) { l.queueSize = n }
}

func NewListener(ctx context.Context, addr netip.AddrPort, path string, opts ...Option) (*Listener, error) {
	ln, err := net.Listen("tcp", addr.String())
	if err != nil {
		return nil, err
	}

	l := &Listener{
		ln:             ln,
		closed:         make(chan struct{}),
		admissionWait:  defaultAdmissionWait,
		shutdownWindow: defaultShutdownWindow,
		queueSize:      defaultQueueSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.queue = make(chan Accepted, l.queueSize)

	mux := http.NewServeMux()
	mux.HandleFunc(path, l.upgrade)
	l.srv = &http.Server{Handler: mux}

	go func() {
		_ = l.srv.Serve(ln)
		close(l.closed)
	}()
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	return l, nil
}

// upgrade handles one inbound HTTP request: upgrade to WebSocket, then
// try to hand it to Accept within admissionWait before giving up.
func (l *Listener) upgrade(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		return
	}
	c.SetReadLimit(ReadLimitBytes)

	accepted := Accepted{Conn: c, Local: l.ln.Addr(), Remote: parseRemoteAddr(r.RemoteAddr)}

	timer := time.NewTimer(l.admissionWait)
	defer timer.Stop()
	select {
	case l.queue <- accepted:
	case <-timer.C:
		l.dropped.Add(1)
		_ = c.Close(websocket.StatusTryAgainLater, "session manager busy")
	case <-l.closed:
		_ = c.Close(websocket.StatusServiceRestart, "listener shutting down")
	}
}

func (l *Listener) Accept() (Accepted, error) {
	select {
	case c := <-l.queue:
		return c, nil
	case <-l.closed:
		return Accepted{}, net.ErrClosed
	}
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Dropped returns the number of upgraded connections rejected because
// the accept queue stayed full for longer than admissionWait.
func (l *Listener) Dropped() int64 { return l.dropped.Load() }

func (l *Listener) Close() error {
	l.once.Do(func() { _ = l.shutdown() })
	return nil
}

func (l *Listener) shutdown() error {
	shCtx, cancel := context.WithTimeout(context.Background(), l.shutdownWindow)
	defer cancel()
	_ = l.srv.Shutdown(shCtx)
	return l.ln.Close()
}

func parseRemoteAddr(s string) net.Addr {
	host, port, _ := net.SplitHostPort(s)
	p, _ := strconv.Atoi(port)
	return &net.TCPAddr{IP: net.ParseIP(host), Port: p}
}
