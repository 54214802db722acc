// Package session defines the Session Manager's public contract
// (spec §4.1) and the wire-level Hello request it admits (spec §6).
package session

import "github.com/google/uuid"

// HelloRequest is the wire-level admission request (spec §6 "Hello
// request (wire)"). EncryptedClientID must equal
// AES-CBC(key=secret, iv=zeros, no padding) applied to ClientID's
// 16 raw bytes (spec §4.2 step 2).
type HelloRequest struct {
	ClientID           uuid.UUID
	TokenID            uuid.UUID
	UserToken          []byte
	EncryptedClientID  [16]byte
}
