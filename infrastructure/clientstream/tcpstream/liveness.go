//go:build linux || darwin

package tcpstream

import (
	"net"

	"golang.org/x/sys/unix"
)

// Liveness probes whether the underlying TCP socket is still connected
// by reading its SO_ERROR without consuming any application data
// (spec §4.4 "Liveness check"). Grounded on the teacher's use of
// SyscallConn to reach the raw file descriptor (seen across the
// retrieved pack's socket-tuning helpers).
type Liveness struct {
	conn *net.TCPConn
}

func NewLiveness(conn net.Conn) *Liveness {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	return &Liveness{conn: tc}
}

// IsAlive returns false once the socket has a pending asynchronous
// error (for example a reset or a timeout), true otherwise. A graceful
// peer close (FIN) sets no socket error, so it still reports alive. A nil receiver (non-TCP conn) is always reported alive,
// deferring entirely to the read/write path to detect failure.
func (l *Liveness) IsAlive() bool {
	if l == nil {
		return true
	}
	raw, err := l.conn.SyscallConn()
	if err != nil {
		return false
	}
	var soErr int
	var getErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		soErr, getErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
	})
	if ctrlErr != nil || getErr != nil {
		return false
	}
	return soErr == 0
}
