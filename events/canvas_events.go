package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageSentEvent is emitted after a chat message has been persisted and
// handed to the broadcast engine.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	RoomID    uint      `json:"room_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomJoinedEvent is emitted when a principal joins a room.
type RoomJoinedEvent struct {
	RoomID    uint      `json:"room_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomLeftEvent is emitted when a principal leaves a room.
type RoomLeftEvent struct {
	RoomID    uint      `json:"room_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomCreatedEvent is emitted when a new room is created through the API.
type RoomCreatedEvent struct {
	RoomID    uint      `json:"room_id"`
	Slug      string    `json:"slug"`
	AdminID   string    `json:"admin_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the collaboration domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"wsserver",
		"MessageSent",
		"v1",
	)

	RoomJoinedV1 = helper.EventDefinition[RoomJoinedEvent](
		"wsserver",
		"RoomJoined",
		"v1",
	)

	RoomLeftV1 = helper.EventDefinition[RoomLeftEvent](
		"wsserver",
		"RoomLeft",
		"v1",
	)

	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"store",
		"RoomCreated",
		"v1",
	)
)
