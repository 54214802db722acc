package session

import "sync/atomic"

// idGenerator issues non-zero, unique-for-process-lifetime session
// ids (spec §3 "session_id: u64 (non-zero, unique for process
// lifetime)").
type idGenerator struct {
	counter atomic.Uint64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

func (g *idGenerator) next() uint64 {
	return g.counter.Add(1)
}
