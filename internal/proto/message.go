package proto

import "encoding/json"

// RequestType identifies the command a client wants to run.
type RequestType int

const (
	RequestLogin RequestType = iota + 1
	RequestLogout
	RequestCreateChannel
	RequestDeleteChannel
	RequestJoinChannel
	RequestLeaveChannel
	RequestCreateCommunity
	RequestDeleteCommunity
	RequestJoinCommunity
	RequestLeaveCommunity
	RequestAddRole
	RequestRemoveRole
	RequestBanUser
	RequestKickUser
	RequestUserInfo
	RequestUpdateDisplayName
	RequestChatMessage
	RequestChannelInfo
)

// Status is the outcome carried by every response envelope.
type Status int

const (
	StatusSuccess Status = iota
	StatusCreated
	StatusBadRequest
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCreated:
		return "created"
	case StatusBadRequest:
		return "bad_request"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusForbidden:
		return "forbidden"
	case StatusNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// Request is the envelope for messages coming from the client. Data stays
// opaque until the matching command decodes it.
type Request struct {
	Type  RequestType     `json:"type"`
	Nonce string          `json:"nonce,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Response is the envelope sent back to clients. Nonce echoes the request's
// correlation token; broadcasts carry an empty nonce.
type Response struct {
	Status Status      `json:"status"`
	Type   RequestType `json:"type"`
	Nonce  string      `json:"nonce,omitempty"`
	Data   any         `json:"data,omitempty"`
}
