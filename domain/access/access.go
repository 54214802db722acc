package access

import "github.com/google/uuid"

// StatusCode is the access record's own status, as reported by the
// access backend (C1). It is distinct from ResponseCode, which is the
// value the session core surfaces to the client.
type StatusCode int

const (
	StatusOk StatusCode = iota
	StatusExpired
	StatusTrafficOverUsage
	StatusRevokedByAdmin
)

func (s StatusCode) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusExpired:
		return "Expired"
	case StatusTrafficOverUsage:
		return "TrafficOverUsage"
	case StatusRevokedByAdmin:
		return "RevokedByAdmin"
	default:
		return "Unknown"
	}
}

// ResponseCode is what the session core surfaces to a calling client.
type ResponseCode int

const (
	ResponseOk ResponseCode = iota
	ResponseAccessError
	ResponseSessionClosed
)

func (r ResponseCode) String() string {
	switch r {
	case ResponseOk:
		return "Ok"
	case ResponseAccessError:
		return "AccessError"
	case ResponseSessionClosed:
		return "SessionClosed"
	default:
		return "Unknown"
	}
}

// Usage is a snapshot of an access's consumption counters at the time
// it was read. It is attached to failure responses so a client can
// display quota information.
type Usage struct {
	BytesUp     uint64
	BytesDown   uint64
	ConnectedAt int64 // unix seconds, 0 if never connected
}

// Access is the record returned by the access backend (C1). It is
// owned by the AccessController that resolved it and refreshed in
// place; it is never copied across controllers.
type Access struct {
	AccessID       uuid.UUID
	Secret         []byte
	MaxClientCount uint32 // 0 = unlimited
	StatusCode     StatusCode
	Message        string
	Usage          Usage
}

// ResponseCodeFor maps an access's status to the response code the
// core surfaces to a caller.
func ResponseCodeFor(status StatusCode) ResponseCode {
	if status == StatusOk {
		return ResponseOk
	}
	return ResponseAccessError
}
