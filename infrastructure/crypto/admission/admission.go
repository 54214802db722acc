// Package admission implements the admission proof primitive from
// spec §4.2 / §9 "Crypto primitive": AES in CBC mode, key = the
// access secret, IV = zero bytes of length equal to the key length,
// no padding, applied to the 16-byte client id (one AES block). This
// is a one-block MAC-like construct, not a general-purpose MAC — keys
// must not be reused across clients. The exact primitive is preserved
// for wire compatibility; a modern AEAD (as the teacher's own
// crypto/aes256 package uses for its own, unrelated purposes) would
// not interoperate with existing clients, so this package intentionally
// does not follow that sibling package's GCM-based style.
package admission

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// BlockSize is the AES block size and therefore the exact size of
// both the plaintext client id and the resulting admission proof.
const BlockSize = aes.BlockSize

// Compute encrypts the 16-byte clientID under key using AES-CBC with
// a zero IV and no padding, producing the admission proof a client
// must present in HelloRequest.EncryptedClientID.
func Compute(key []byte, clientID [16]byte) ([16]byte, error) {
	var out [16]byte
	block, err := aes.NewCipher(key)
	if err != nil {
		return out, fmt.Errorf("admission: new cipher: %w", err)
	}
	if block.BlockSize() != BlockSize {
		return out, fmt.Errorf("admission: unexpected block size %d", block.BlockSize())
	}

	iv := make([]byte, block.BlockSize())
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out[:], clientID[:])
	return out, nil
}

// Verify reports whether encryptedClientID is the admission proof for
// clientID under key, per spec §4.2 step 2.
func Verify(key []byte, clientID [16]byte, encryptedClientID [16]byte) (bool, error) {
	expected, err := Compute(key, clientID)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(expected[:], encryptedClientID[:]) == 1, nil
}
