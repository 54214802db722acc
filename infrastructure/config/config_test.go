package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSIONCORE_SESSION_TIMEOUT_SECONDS", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionTimeout != 300*time.Second {
		t.Fatalf("got %v, want 300s", cfg.SessionTimeout)
	}
	if cfg.ReapInterval != 300*time.Second {
		t.Fatalf("got %v, want 300s", cfg.ReapInterval)
	}
	if cfg.MaxConcurrent != 0 {
		t.Fatalf("got %d, want 0", cfg.MaxConcurrent)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "session_timeout_seconds: 120\nreap_interval_seconds: 60\nmax_concurrent_sessions: 500\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionTimeout != 120*time.Second {
		t.Fatalf("got %v, want 120s", cfg.SessionTimeout)
	}
	if cfg.ReapInterval != 60*time.Second {
		t.Fatalf("got %v, want 60s", cfg.ReapInterval)
	}
	if cfg.MaxConcurrent != 500 {
		t.Fatalf("got %d, want 500", cfg.MaxConcurrent)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SESSIONCORE_MAX_CONCURRENT_SESSIONS", "42")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxConcurrent != 42 {
		t.Fatalf("got %d, want 42", cfg.MaxConcurrent)
	}
}

func TestLoad_DecodesSecretSealKeyHex(t *testing.T) {
	t.Setenv("SESSIONCORE_SECRET_SEAL_KEY_HEX", "2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SecretSealKey) != 32 {
		t.Fatalf("got key length %d, want 32", len(cfg.SecretSealKey))
	}
}

func TestLoad_RejectsInvalidSecretSealKeyHex(t *testing.T) {
	t.Setenv("SESSIONCORE_SECRET_SEAL_KEY_HEX", "not-hex")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected an error for an invalid hex seal key")
	}
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("session_timeout_seconds: 0\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for a non-positive session timeout")
	}
}
