// Package wire implements the binary codec for the Hello request
// (spec §6 "Hello request (wire)"): client_id (16 bytes), token_id
// (16 bytes), a u16-BE length-prefixed opaque user_token, and the
// 16-byte encrypted_client_id admission proof. Grounded on the
// teacher's own u16-BE length-prefix convention from
// infrastructure/network/tcp/adapters.LengthPrefixFramingAdapter.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	appsession "sessioncore/application/session"
)

const (
	uuidLen      = 16
	minHelloSize = uuidLen*2 + 2 + uuidLen // client_id + token_id + user_token len + encrypted_client_id
)

// EncodeHello is the client-side counterpart used by tests and any
// future client implementation.
func EncodeHello(h appsession.HelloRequest) []byte {
	out := make([]byte, 0, minHelloSize+len(h.UserToken))
	out = append(out, h.ClientID[:]...)
	out = append(out, h.TokenID[:]...)

	var lenPrefix [2]byte
	binary.BigEndian.PutUint16(lenPrefix[:], uint16(len(h.UserToken)))
	out = append(out, lenPrefix[:]...)
	out = append(out, h.UserToken...)
	out = append(out, h.EncryptedClientID[:]...)
	return out
}

// DecodeHello parses one Hello request (spec §6). It returns an error
// for any frame too short to hold the fixed-size fields or whose
// declared user_token length doesn't fit the remaining bytes.
func DecodeHello(data []byte) (appsession.HelloRequest, error) {
	if len(data) < minHelloSize {
		return appsession.HelloRequest{}, fmt.Errorf("hello frame too short: %d bytes", len(data))
	}

	var h appsession.HelloRequest
	off := 0

	clientID, err := uuid.FromBytes(data[off : off+uuidLen])
	if err != nil {
		return appsession.HelloRequest{}, fmt.Errorf("parse client_id: %w", err)
	}
	h.ClientID = clientID
	off += uuidLen

	tokenID, err := uuid.FromBytes(data[off : off+uuidLen])
	if err != nil {
		return appsession.HelloRequest{}, fmt.Errorf("parse token_id: %w", err)
	}
	h.TokenID = tokenID
	off += uuidLen

	userTokenLen := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if len(data) < off+userTokenLen+uuidLen {
		return appsession.HelloRequest{}, fmt.Errorf("hello frame truncated: declared user_token length %d exceeds remaining bytes", userTokenLen)
	}
	if userTokenLen > 0 {
		h.UserToken = append([]byte(nil), data[off:off+userTokenLen]...)
	}
	off += userTokenLen

	copy(h.EncryptedClientID[:], data[off:off+uuidLen])
	return h, nil
}
