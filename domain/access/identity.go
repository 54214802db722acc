package access

import "github.com/google/uuid"

// ClientIdentity is the immutable tuple derived from an incoming Hello.
// It is created once per connection attempt and never mutated.
type ClientIdentity struct {
	ClientID  uuid.UUID
	ClientIP  string
	TokenID   uuid.UUID
	UserToken []byte
}

func NewClientIdentity(clientID, tokenID uuid.UUID, clientIP string, userToken []byte) ClientIdentity {
	return ClientIdentity{
		ClientID:  clientID,
		ClientIP:  clientIP,
		TokenID:   tokenID,
		UserToken: userToken,
	}
}
