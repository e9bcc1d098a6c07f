package store

import (
	canvas "github.com/ghagevaibhav/CanvasFlow/domain/canvas"
)

// Service names registered on the store module's service container.
const (
	ServiceFindRoom       = "find-room"
	ServiceFindRoomBySlug = "find-room-by-slug"
	ServiceCreateRoom     = "create-room"
	ServiceCreateMessage  = "create-message"
	ServiceRoomHistory    = "room-history"
)

// FindRoomRequest looks up a room by numeric id.
type FindRoomRequest struct {
	RoomID uint `json:"room_id"`
}

// FindRoomResponse carries the room, or Found=false when it does not exist.
// Nonexistence is a definite outcome, not a service error.
type FindRoomResponse struct {
	Found bool         `json:"found"`
	Room  *canvas.Room `json:"room,omitempty"`
}

// FindRoomBySlugRequest looks up a room by slug.
type FindRoomBySlugRequest struct {
	Slug string `json:"slug"`
}

// FindRoomBySlugResponse mirrors FindRoomResponse for slug lookups.
type FindRoomBySlugResponse struct {
	Found bool         `json:"found"`
	Room  *canvas.Room `json:"room,omitempty"`
}

// CreateRoomRequest creates a room owned by AdminID.
type CreateRoomRequest struct {
	Slug    string `json:"slug"`
	AdminID string `json:"admin_id"`
}

// CreateRoomResponse carries the created room.
type CreateRoomResponse struct {
	Room *canvas.Room `json:"room"`
}

// CreateMessageRequest persists one chat message.
type CreateMessageRequest struct {
	RoomID  uint   `json:"room_id"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// CreateMessageResponse carries the persisted message.
type CreateMessageResponse struct {
	Chat *canvas.Chat `json:"chat"`
}

// RoomHistoryRequest fetches recent messages for a room.
type RoomHistoryRequest struct {
	RoomID uint `json:"room_id"`
}

// RoomHistoryResponse carries messages newest first, capped at HistoryLimit.
type RoomHistoryResponse struct {
	Messages []canvas.Chat `json:"messages"`
}
