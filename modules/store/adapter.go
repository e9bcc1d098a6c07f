package store

import (
	"context"
	"encoding/json"
	"fmt"

	canvas "github.com/ghagevaibhav/CanvasFlow/domain/canvas"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Gateway is the narrow persistence capability the WebSocket server
// consumes: room existence checks and message writes.
type Gateway interface {
	FindRoom(ctx context.Context, roomID uint) (*canvas.Room, error)
	CreateMessage(ctx context.Context, roomID uint, userID, message string) (*canvas.Chat, error)
}

// StorePort is the full persistence interface, consumed by the API.
type StorePort interface {
	Gateway
	FindRoomBySlug(ctx context.Context, slug string) (*canvas.Room, error)
	CreateRoom(ctx context.Context, slug, adminID string) (*canvas.Room, error)
	RoomHistory(ctx context.Context, roomID uint) ([]canvas.Chat, error)
}

// StoreAdapter implements StorePort over the store module's service container.
type StoreAdapter struct {
	container mono.ServiceContainer
}

// NewStoreAdapter creates a new StoreAdapter.
func NewStoreAdapter(container mono.ServiceContainer) StorePort {
	if container == nil {
		panic("store: ServiceContainer is nil")
	}
	return &StoreAdapter{container: container}
}

// FindRoom looks up a room by id. A missing room yields ErrRoomNotFound;
// any other error is a datastore failure.
func (a *StoreAdapter) FindRoom(ctx context.Context, roomID uint) (*canvas.Room, error) {
	req := FindRoomRequest{RoomID: roomID}
	var resp FindRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceFindRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	if !resp.Found {
		return nil, ErrRoomNotFound
	}
	return resp.Room, nil
}

// FindRoomBySlug looks up a room by slug.
func (a *StoreAdapter) FindRoomBySlug(ctx context.Context, slug string) (*canvas.Room, error) {
	req := FindRoomBySlugRequest{Slug: slug}
	var resp FindRoomBySlugResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceFindRoomBySlug,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to find room by slug: %w", err)
	}
	if !resp.Found {
		return nil, ErrRoomNotFound
	}
	return resp.Room, nil
}

// CreateRoom creates a room owned by adminID.
func (a *StoreAdapter) CreateRoom(ctx context.Context, slug, adminID string) (*canvas.Room, error) {
	req := CreateRoomRequest{Slug: slug, AdminID: adminID}
	var resp CreateRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return resp.Room, nil
}

// CreateMessage persists one chat message.
func (a *StoreAdapter) CreateMessage(ctx context.Context, roomID uint, userID, message string) (*canvas.Chat, error) {
	req := CreateMessageRequest{RoomID: roomID, UserID: userID, Message: message}
	var resp CreateMessageResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateMessage,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return resp.Chat, nil
}

// RoomHistory returns recent messages for a room, newest first.
func (a *StoreAdapter) RoomHistory(ctx context.Context, roomID uint) ([]canvas.Chat, error) {
	req := RoomHistoryRequest{RoomID: roomID}
	var resp RoomHistoryResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRoomHistory,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to fetch room history: %w", err)
	}
	return resp.Messages, nil
}
