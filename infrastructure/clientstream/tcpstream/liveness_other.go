//go:build !linux && !darwin

package tcpstream

import "net"

// Liveness is the non-Unix fallback: SO_ERROR probing needs the raw
// file descriptor, which isn't exposed this way outside Unix. Callers
// get a liveness checker that always reports alive, deferring entirely
// to the read/write path — the same degrade-to-false-only-on-failure
// behavior the teacher's PAL splits apply per platform.
type Liveness struct{}

func NewLiveness(conn net.Conn) *Liveness { return &Liveness{} }

func (l *Liveness) IsAlive() bool { return true }
