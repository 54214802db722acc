// Package clientstream implements the reusable TCP client-stream
// abstraction (spec §4.4): a bidirectional byte carrier bound to a
// live TCP socket plus its protocol framing, which may hand its
// socket off to a fresh logical stream instead of closing it.
//
// The package is deliberately transport-agnostic: it depends only on
// the Framed/LivenessChecker interfaces, not on net.Conn directly, so
// the same disposal state machine drives both the plain TCP framing
// and the HTTP/WebSocket framing under infrastructure/clientstream.
package clientstream

import (
	"context"
	"io"
	"net"
	"sync"

	"sessioncore/application/logging"
)

// Endpoints is the (local, remote) address pair a Client Stream
// exposes (spec §3 "Client Stream").
type Endpoints struct {
	Local  net.Addr
	Remote net.Addr
}

// Framed is the protocol-framing layer wrapping a TCP socket. It is a
// plain io.ReadWriteCloser for most transports; the HTTP/WebSocket
// framing implements FramedReusable to opt in to reuse (spec §4.4:
// "the framing layer supports producing a fresh inner stream").
type Framed interface {
	io.Reader
	io.Writer
	Close() error
}

// FramedReusable is implemented by framing layers that can produce a
// fresh inner stream over the same underlying socket without a new
// handshake (spec §4.4).
type FramedReusable interface {
	Framed
	// CreateReuse produces a new Framed layer over the same socket.
	CreateReuse(ctx context.Context) (Framed, error)
}

// ReuseSink receives the replacement Client Stream produced by a
// successful reuse disposal (spec §4.4 "invoke reuse_sink (async)").
type ReuseSink interface {
	Accept(ctx context.Context, s *Stream)
}

// LivenessChecker probes whether the underlying TCP socket is still
// connected without consuming data (spec §4.4 "Liveness check").
type LivenessChecker interface {
	IsAlive() bool
}

// Stream is a logical Client Stream: one live TCP socket, its framing
// layer, and (optionally) the sink that receives its successor on
// reuse. Exactly one live Stream owns a given socket at a time (spec
// §4.4 invariant).
type Stream struct {
	id        string
	framed    Framed
	liveness  LivenessChecker
	endpoints Endpoints
	reuseSink ReuseSink
	logger    logging.Logger

	mu       sync.Mutex
	disposed bool
}

// Option configures optional Stream fields at construction.
type Option func(*Stream)

// WithReuseSink attaches the sink that receives the successor stream
// produced by a successful reuse disposal.
func WithReuseSink(sink ReuseSink) Option {
	return func(s *Stream) { s.reuseSink = sink }
}

func New(id string, framed Framed, liveness LivenessChecker, endpoints Endpoints, logger logging.Logger, opts ...Option) *Stream {
	s := &Stream{
		id:        id,
		framed:    framed,
		liveness:  liveness,
		endpoints: endpoints,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stream) ID() string            { return s.id }
func (s *Stream) Endpoints() Endpoints  { return s.endpoints }

func (s *Stream) Read(p []byte) (int, error)  { return s.framed.Read(p) }
func (s *Stream) Write(p []byte) (int, error) { return s.framed.Write(p) }

func (s *Stream) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Dispose runs the disposal state machine (spec §4.4). When
// allowReuse is false, or no reuse_sink was supplied, or the framing
// layer doesn't support reuse, or the liveness check fails, this is a
// terminal disposal: the socket is closed. Otherwise a fresh Framed
// layer is produced and handed to reuse_sink asynchronously; any
// failure along that path degrades to terminal close. Idempotent: a
// second call is a no-op.
func (s *Stream) Dispose(ctx context.Context, allowReuse bool) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	if allowReuse && s.tryReuse(ctx) {
		return
	}
	s.closeTerminal()
}

func (s *Stream) tryReuse(ctx context.Context) bool {
	if s.reuseSink == nil {
		return false
	}
	reusable, ok := s.framed.(FramedReusable)
	if !ok {
		return false
	}
	if s.liveness != nil && !s.liveness.IsAlive() {
		return false
	}

	fresh, err := reusable.CreateReuse(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("client stream %s: reuse failed, closing: %v", s.id, err)
		}
		return false
	}

	next := &Stream{
		id:        s.id,
		framed:    fresh,
		liveness:  s.liveness,
		endpoints: s.endpoints,
		reuseSink: s.reuseSink,
		logger:    s.logger,
	}
	go s.reuseSink.Accept(ctx, next)
	return true
}

func (s *Stream) closeTerminal() {
	if err := s.framed.Close(); err != nil && s.logger != nil {
		s.logger.Printf("client stream %s: close error: %v", s.id, err)
	}
}
