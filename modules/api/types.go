package api

import (
	canvas "github.com/ghagevaibhav/CanvasFlow/domain/canvas"
)

// SignupRequest is the request body for POST /signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SigninRequest is the request body for POST /signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for POST /room/create.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoomResponse acknowledges a created room.
type CreateRoomResponse struct {
	Message string `json:"message"`
	RoomID  uint   `json:"roomId"`
}

// RoomResponse wraps a room lookup by slug.
type RoomResponse struct {
	Room *canvas.Room `json:"room"`
}

// ChatsResponse wraps a room's message history, newest first.
type ChatsResponse struct {
	Messages []canvas.Chat `json:"messages"`
}

// MessageResponse is the generic {message} body used for errors and acks.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
