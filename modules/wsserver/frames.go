package wsserver

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Inbound frame types.
const (
	frameJoinRoom  = "join_room"
	frameLeaveRoom = "leave_room"
	frameChat      = "chat"
)

// Outbound frame types.
const (
	frameJoinSuccess  = "join_success"
	frameLeaveSuccess = "leave_success"
)

// Error strings are part of the wire contract with deployed clients.
const (
	errUnauthorized  = "Unauthorized"
	errRoomNotFound  = "Room not found"
	errJoinFailed    = "Failed to join room"
	errNotAMember    = "Not a member of this room"
	errSendFailed    = "Failed to send message"
	errInvalidType   = "Invalid message type"
	errInvalidFormat = "Invalid message format"
)

// inboundFrame is one client request. RoomID stays raw because legacy
// clients send it as either a JSON number or a decimal string.
type inboundFrame struct {
	Type    string          `json:"type"`
	RoomID  json.RawMessage `json:"roomId"`
	Message string          `json:"message"`
}

// errorFrame reports a failure to the sender.
type errorFrame struct {
	Error string `json:"error"`
}

// ackFrame confirms a join or leave.
type ackFrame struct {
	Type   string `json:"type"`
	RoomID uint   `json:"roomId"`
}

// chatFrame is the payload broadcast to every member of a room.
type chatFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Room    uint   `json:"room"`
	UserID  string `json:"userId"`
}

var errBadRoomID = errors.New("room id is not numeric")

// parseRoomID coerces a number-like roomId. A non-numeric value is a
// protocol error; a numeric but non-positive value parses to 0, which no
// room ever has, so it falls through to the not-found / not-a-member paths.
func parseRoomID(raw json.RawMessage) (uint, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, errBadRoomID
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errBadRoomID
	}
	if n <= 0 {
		return 0, nil
	}
	return uint(n), nil
}
