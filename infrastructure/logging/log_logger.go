package logging

import (
	"log"

	"sessioncore/application/logging"
)

// LogLogger adapts the standard log package to logging.Logger.
type LogLogger struct{}

func NewLogLogger() logging.Logger {
	return &LogLogger{}
}

func (l LogLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}
