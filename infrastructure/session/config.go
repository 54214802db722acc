package session

import "time"

// Config holds the recognised options from spec §6 "Configuration".
type Config struct {
	SessionTimeout  time.Duration
	ReapInterval    time.Duration
	MaxConcurrent   int // 0 = unlimited (enforced by the listener, see SPEC_FULL §12)
}

const defaultSessionTimeout = 300 * time.Second

// WithDefaults fills in zero-valued fields with the spec's defaults.
func (c Config) WithDefaults() Config {
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = defaultSessionTimeout
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = c.SessionTimeout
	}
	return c
}
