// Command sessiond runs the session core: it admits Client Streams
// over TCP and WebSocket transports, enforces the admission algorithm
// against an access backend, and serves Prometheus metrics. Wiring
// style grounded on the teacher's main.go (signal handling) and
// presentation/runners/server.Runner (errgroup-based worker fan-out).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	appaccess "sessioncore/application/access"
	appclientstream "sessioncore/application/clientstream"
	applogging "sessioncore/application/logging"
	appsession "sessioncore/application/session"
	"sessioncore/infrastructure/access"
	"sessioncore/infrastructure/clientstream/httpstream"
	"sessioncore/infrastructure/clientstream/tcpstream"
	"sessioncore/infrastructure/config"
	infralogging "sessioncore/infrastructure/logging"
	prommetrics "sessioncore/infrastructure/metrics/prometheus"
	"sessioncore/infrastructure/session"
	"sessioncore/infrastructure/tracking"
	"sessioncore/infrastructure/wire"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	logger := infralogging.NewLogLogger()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("sessiond: %v", err)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupt received. Shutting down...")
		cancel()
	}()

	if err := run(appCtx, cfg, logger); err != nil {
		log.Fatalf("sessiond: %v", err)
	}
}

func run(ctx context.Context, cfg config.SessionManagerConfig, logger applogging.Logger) error {
	backend, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("access backend: %w", err)
	}

	registry := access.NewRegistry()
	validator := access.NewValidator(backend, registry)

	reg := prometheus.NewRegistry()
	recorder := prommetrics.NewRecorder(reg)

	tracker := tracking.NewAsyncTracker(ctx, tracking.NewLogSink(logger), logger, 4, 1024)

	manager := session.NewDefaultManager(validator, tracker, logger, recorder, cfg.SessionConfig())

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		session.RunReaperLoop(egCtx, manager, cfg.ReapInterval)
		return nil
	})

	eg.Go(func() error {
		return serveTCP(egCtx, cfg, manager, logger)
	})

	eg.Go(func() error {
		return serveWS(egCtx, cfg, manager, logger)
	})

	eg.Go(func() error {
		return serveMetrics(egCtx, cfg, reg)
	})

	<-egCtx.Done()
	manager.Dispose()
	return eg.Wait()
}

func newBackend(cfg config.SessionManagerConfig) (appaccess.Backend, error) {
	if cfg.RedisAddr == "" {
		return access.NewMemoryBackend(), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if len(cfg.SecretSealKey) > 0 {
		return access.NewRedisBackendWithSealKey(client, cfg.SecretSealKey), nil
	}
	return access.NewRedisBackend(client), nil
}

// serveTCP accepts raw length-prefixed Client Streams, capped at
// max_concurrent_sessions via netutil.LimitListener (SPEC_FULL §12
// "Config-driven hard cap"). Each accepted socket becomes a
// clientstream.Stream; tcpstream.Framing never supports reuse, so a
// stream's Dispose always degrades to a terminal close (spec §4.4).
func serveTCP(ctx context.Context, cfg config.SessionManagerConfig, manager appsession.Manager, logger applogging.Logger) error {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("tcp listen %s: %w", cfg.ListenAddr, err)
	}
	if cfg.MaxConcurrent > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConcurrent)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	logger.Printf("sessiond: listening for TCP client streams on %s", cfg.ListenAddr)
	for {
		conn, acceptErr := ln.Accept()
		if acceptErr != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("tcp accept: %w", acceptErr)
			}
		}
		go handleTCPConn(ctx, conn, manager, logger)
	}
}

func handleTCPConn(ctx context.Context, conn net.Conn, manager appsession.Manager, logger applogging.Logger) {
	endpoints := appclientstream.Endpoints{Local: conn.LocalAddr(), Remote: conn.RemoteAddr()}
	stream := appclientstream.New(
		uuid.NewString(),
		tcpstream.NewFraming(conn),
		tcpstream.NewLiveness(conn),
		endpoints,
		logger,
	)
	admitOverStream(ctx, stream, manager, logger)
}

// serveWS accepts WebSocket-upgraded Client Streams. Unlike the TCP
// transport, httpstream.Framing supports reuse (spec §4.4): a session
// that disposes with allowReuse true hands a fresh Framing over the
// same upgraded connection back to wsReuseSink, which re-admits a new
// Hello without tearing down the socket.
func serveWS(ctx context.Context, cfg config.SessionManagerConfig, manager appsession.Manager, logger applogging.Logger) error {
	addr, err := netip.ParseAddrPort(normalizeAddr(cfg.WSListenAddr))
	if err != nil {
		return fmt.Errorf("ws listen addr %s: %w", cfg.WSListenAddr, err)
	}

	ln, err := httpstream.NewListener(ctx, addr, "/stream")
	if err != nil {
		return fmt.Errorf("ws listen %s: %w", cfg.WSListenAddr, err)
	}
	defer ln.Close()

	sink := &wsReuseSink{manager: manager, logger: logger}

	logger.Printf("sessiond: listening for WebSocket client streams on %s", cfg.WSListenAddr)
	for {
		accepted, acceptErr := ln.Accept()
		if acceptErr != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("ws accept: %w", acceptErr)
			}
		}
		go handleWSConn(ctx, accepted, manager, logger, sink)
	}
}

func handleWSConn(ctx context.Context, accepted httpstream.Accepted, manager appsession.Manager, logger applogging.Logger, sink *wsReuseSink) {
	endpoints := appclientstream.Endpoints{Local: accepted.Local, Remote: accepted.Remote}
	stream := appclientstream.New(
		uuid.NewString(),
		httpstream.NewFraming(ctx, accepted.Conn),
		httpstream.NewLiveness(accepted.Conn),
		endpoints,
		logger,
		appclientstream.WithReuseSink(sink),
	)
	admitOverStream(ctx, stream, manager, logger)
}

// wsReuseSink re-admits the successor stream produced by a reuse
// disposal (spec §4.4 "invoke reuse_sink"): the WebSocket connection
// outlives any one logical Client Stream, so the next Hello arrives
// over the same socket instead of a fresh TCP handshake.
type wsReuseSink struct {
	manager appsession.Manager
	logger  applogging.Logger
}

func (s *wsReuseSink) Accept(ctx context.Context, stream *appclientstream.Stream) {
	admitOverStream(ctx, stream, s.manager, s.logger)
}

var _ appclientstream.ReuseSink = (*wsReuseSink)(nil)

// admitOverStream reads exactly one Hello frame off stream and runs it
// through the admission algorithm (spec §4.2). On success the stream
// is disposed with reuse allowed, so a transport that supports it
// (httpstream) can keep the socket alive for the next admission; on
// any failure it is disposed terminally.
func admitOverStream(ctx context.Context, stream *appclientstream.Stream, manager appsession.Manager, logger applogging.Logger) {
	buf := make([]byte, tcpstream.MaxFrameBytes)
	n, err := stream.Read(buf)
	if err != nil {
		logger.Printf("client stream %s: reading hello: %v", stream.ID(), err)
		stream.Dispose(ctx, false)
		return
	}

	hello, err := wire.DecodeHello(buf[:n])
	if err != nil {
		logger.Printf("client stream %s: decoding hello: %v", stream.ID(), err)
		stream.Dispose(ctx, false)
		return
	}

	host, _, _ := net.SplitHostPort(stream.Endpoints().Remote.String())
	s, err := manager.CreateSession(ctx, hello, host)
	if err != nil {
		logger.Printf("client stream %s: admission failed: %v", stream.ID(), err)
		stream.Dispose(ctx, false)
		return
	}

	logger.Printf("sessiond: admitted session %d for client %s over stream %s", s.SessionID(), s.ClientID(), stream.ID())
	stream.Dispose(ctx, true)
}

func normalizeAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "0.0.0.0" + addr
	}
	return addr
}

func serveMetrics(ctx context.Context, cfg config.SessionManagerConfig, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
