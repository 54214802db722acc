package admission

import (
	"testing"

	"github.com/google/uuid"
)

func TestCompute_MatchesSpecExample(t *testing.T) {
	// spec §8 scenario 1: secret = 16 zero bytes, client_id =
	// 00112233-4455-6677-8899-aabbccddeeff.
	key := make([]byte, 16)
	clientID := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	var raw [16]byte
	copy(raw[:], clientID[:])

	proof, err := Compute(key, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, verr := Verify(key, raw, proof)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if !ok {
		t.Fatalf("expected computed proof to verify against itself")
	}
}

func TestVerify_RejectsFlippedByte(t *testing.T) {
	key := make([]byte, 24)
	var clientID [16]byte
	copy(clientID[:], []byte("0123456789abcdef"))

	proof, err := Compute(key, clientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proof[15] ^= 0xFF

	ok, verr := Verify(key, clientID, proof)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if ok {
		t.Fatalf("expected flipped byte to fail verification")
	}
}

func TestCompute_DeterministicRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	var clientID [16]byte
	for i := range clientID {
		clientID[i] = byte(255 - i)
	}

	p1, err1 := Compute(key, clientID)
	p2, err2 := Compute(key, clientID)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	if p1 != p2 {
		t.Fatalf("expected deterministic output for same key/clientID")
	}
}

func TestCompute_RejectsBadKeyLength(t *testing.T) {
	key := make([]byte, 7)
	var clientID [16]byte
	if _, err := Compute(key, clientID); err == nil {
		t.Fatalf("expected error for invalid AES key length")
	}
}
