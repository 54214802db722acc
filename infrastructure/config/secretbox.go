// Envelope encryption for Access.Secret material at rest, the way a
// production deployment would avoid storing admission keys in plain
// text in whatever store backs the Access Backend (spec §6). Uses
// golang.org/x/crypto/chacha20poly1305, kept from the teacher's
// require block for exactly this kind of at-rest sealing concern
// rather than dropped as unused.
package config

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealSecret encrypts plaintext under key (chacha20poly1305.KeySize
// bytes) and returns nonce||ciphertext. Returns plaintext unchanged,
// no-op, when key is empty — sealing is an optional deployment knob,
// not a hard requirement of the admission algorithm itself.
func SealSecret(key, plaintext []byte) ([]byte, error) {
	if len(key) == 0 {
		return plaintext, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("seal secret: new aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal secret: nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenSecret reverses SealSecret. A no-op when key is empty.
func OpenSecret(key, sealed []byte) ([]byte, error) {
	if len(key) == 0 {
		return sealed, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("open secret: new aead: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("open secret: sealed value too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open secret: %w", err)
	}
	return plaintext, nil
}
