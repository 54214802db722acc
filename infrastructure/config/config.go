// Package config loads the Session Manager's runtime configuration
// (spec §6 "Configuration") through github.com/spf13/viper, the way
// the teacher pack's go-i2p/lib/config wires viper.SetDefault plus an
// optional file path flag plus environment overrides.
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/viper"

	sessioninfra "sessioncore/infrastructure/session"
)

// SessionManagerConfig is the validated, process-wide configuration
// (spec §6: session_timeout_seconds, reap_interval_seconds,
// max_concurrent_sessions).
type SessionManagerConfig struct {
	SessionTimeout  time.Duration
	ReapInterval    time.Duration
	MaxConcurrent   int

	ListenAddr   string
	WSListenAddr string
	MetricsAddr  string
	RedisAddr    string

	// SecretSealKey, when non-empty, is a chacha20poly1305.KeySize-byte
	// key used to envelope-encrypt Access.Secret at rest in the Redis
	// backend (config.SealSecret/OpenSecret). Empty disables sealing.
	SecretSealKey []byte
}

const (
	keySessionTimeoutSeconds = "session_timeout_seconds"
	keyReapIntervalSeconds   = "reap_interval_seconds"
	keyMaxConcurrentSessions = "max_concurrent_sessions"
	keyListenAddr            = "listen_addr"
	keyWSListenAddr          = "ws_listen_addr"
	keyMetricsAddr           = "metrics_addr"
	keyRedisAddr             = "redis_addr"
	keySecretSealKeyHex      = "secret_seal_key_hex"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keySessionTimeoutSeconds, 300)
	v.SetDefault(keyReapIntervalSeconds, 0) // 0: use session_timeout_seconds
	v.SetDefault(keyMaxConcurrentSessions, 0)
	v.SetDefault(keyListenAddr, ":9443")
	v.SetDefault(keyWSListenAddr, ":9444")
	v.SetDefault(keyMetricsAddr, ":9445")
	v.SetDefault(keyRedisAddr, "")
	v.SetDefault(keySecretSealKeyHex, "")
}

// Load reads configFile (if non-empty), then environment variables
// prefixed SESSIONCORE_, over the defaults above, and validates the
// result (spec §6: "Recognised options ... are loaded via viper").
func Load(configFile string) (SessionManagerConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("sessioncore")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return SessionManagerConfig{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := SessionManagerConfig{
		SessionTimeout: time.Duration(v.GetInt(keySessionTimeoutSeconds)) * time.Second,
		ReapInterval:   time.Duration(v.GetInt(keyReapIntervalSeconds)) * time.Second,
		MaxConcurrent:  v.GetInt(keyMaxConcurrentSessions),
		ListenAddr:     v.GetString(keyListenAddr),
		WSListenAddr:   v.GetString(keyWSListenAddr),
		MetricsAddr:    v.GetString(keyMetricsAddr),
		RedisAddr:      v.GetString(keyRedisAddr),
	}

	if cfg.SessionTimeout <= 0 {
		return SessionManagerConfig{}, fmt.Errorf("%s must be > 0", keySessionTimeoutSeconds)
	}
	if cfg.ReapInterval == 0 {
		cfg.ReapInterval = cfg.SessionTimeout
	}
	if cfg.ReapInterval <= 0 {
		return SessionManagerConfig{}, fmt.Errorf("%s must be > 0", keyReapIntervalSeconds)
	}
	if cfg.MaxConcurrent < 0 {
		return SessionManagerConfig{}, fmt.Errorf("%s must be >= 0", keyMaxConcurrentSessions)
	}

	if raw := v.GetString(keySecretSealKeyHex); raw != "" {
		key, decodeErr := hex.DecodeString(raw)
		if decodeErr != nil {
			return SessionManagerConfig{}, fmt.Errorf("%s: invalid hex: %w", keySecretSealKeyHex, decodeErr)
		}
		cfg.SecretSealKey = key
	}

	return cfg, nil
}

// SessionConfig projects the subset infrastructure/session.Config needs.
func (c SessionManagerConfig) SessionConfig() sessioninfra.Config {
	return sessioninfra.Config{
		SessionTimeout: c.SessionTimeout,
		ReapInterval:   c.ReapInterval,
		MaxConcurrent:  c.MaxConcurrent,
	}
}
