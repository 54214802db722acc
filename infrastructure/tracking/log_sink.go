package tracking

import (
	"context"

	"sessioncore/application/logging"
)

// LogSink is the default Sink: it just logs the event. Wire a real
// analytics backend's Sink in its place for production use.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink { return &LogSink{logger: logger} }

func (s *LogSink) Deliver(_ context.Context, ev Event) error {
	s.logger.Printf("tracking event: %s:%s", ev.Category, ev.Action)
	return nil
}
