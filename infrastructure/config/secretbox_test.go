package config

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/chacha20poly1305"
)

func TestSealOpenSecret_RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, chacha20poly1305.KeySize)
	plaintext := []byte("access secret material")

	sealed, err := SealSecret(key, plaintext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Equal(sealed, plaintext) {
		t.Fatalf("expected the sealed value to differ from the plaintext")
	}

	opened, err := OpenSecret(key, sealed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Fatalf("got %q, want %q", opened, plaintext)
	}
}

func TestSealSecret_NoOpWithoutKey(t *testing.T) {
	plaintext := []byte("access secret material")
	sealed, err := SealSecret(nil, plaintext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(sealed, plaintext) {
		t.Fatalf("expected SealSecret with no key to be a no-op")
	}
}

func TestOpenSecret_RejectsTruncatedValue(t *testing.T) {
	key := bytes.Repeat([]byte{0x7}, chacha20poly1305.KeySize)
	if _, err := OpenSecret(key, []byte("short")); err == nil {
		t.Fatalf("expected an error for a too-short sealed value")
	}
}

func TestOpenSecret_RejectsTamperedCiphertext(t *testing.T) {
	key := bytes.Repeat([]byte{0x9}, chacha20poly1305.KeySize)
	sealed, err := SealSecret(key, []byte("access secret material"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xFF

	if _, err := OpenSecret(key, sealed); err == nil {
		t.Fatalf("expected tamper detection to fail authentication")
	}
}
