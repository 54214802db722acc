package session

import (
	"context"
	"time"
)

// RunReaperLoop is the optional dedicated background cadence Design
// Note 9(b) calls "advisable but not mandated" — CreateSession already
// reaps inline on every admission (spec §4.1 step 3), but a server
// that is admitting nothing still accumulates disposed sessions until
// the next Hello arrives. Grounded on the teacher's
// infrastructure/tunnel/session.RunIdleReaperLoop.
func RunReaperLoop(ctx context.Context, m *DefaultManager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reapIfDue(m.now())
		}
	}
}
