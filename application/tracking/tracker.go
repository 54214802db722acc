// Package tracking defines the fire-and-forget analytics sink (C1's
// sibling collaborator referenced in spec §6 "Tracker contract").
// Results are always discarded by the caller; errors never propagate
// to the admission path (spec §7, Design Note 9(c)).
package tracking

import "context"

type Tracker interface {
	// TrackEvent dispatches category/action without blocking the
	// caller. Implementations own their own goroutine/queue.
	TrackEvent(ctx context.Context, category, action string)
}

// NoopTracker discards every event. Used by tests and by callers that
// have not wired a real tracking backend.
type NoopTracker struct{}

func (NoopTracker) TrackEvent(context.Context, string, string) {}
