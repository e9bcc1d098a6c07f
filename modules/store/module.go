package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	canvas "github.com/ghagevaibhav/CanvasFlow/domain/canvas"
	"github.com/ghagevaibhav/CanvasFlow/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// StoreModule is the persistence gateway: a narrow repository-style surface
// over rooms and chat messages.
type StoreModule struct {
	db       *gorm.DB
	rooms    *RoomRepository
	chats    *ChatRepository
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*StoreModule)(nil)
var _ mono.ServiceProviderModule = (*StoreModule)(nil)
var _ mono.EventBusAwareModule = (*StoreModule)(nil)
var _ mono.EventEmitterModule = (*StoreModule)(nil)
var _ mono.HealthCheckableModule = (*StoreModule)(nil)

// NewModule creates a new StoreModule on top of an already-open database.
func NewModule(db *gorm.DB) *StoreModule {
	return &StoreModule{
		db: db,
	}
}

// Name returns the module name.
func (m *StoreModule) Name() string {
	return "store"
}

// SetEventBus receives the EventBus from the framework.
func (m *StoreModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *StoreModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
	}
}

// Start migrates the schema and wires the repositories.
func (m *StoreModule) Start(_ context.Context) error {
	if err := m.db.AutoMigrate(&canvas.Room{}, &canvas.Chat{}); err != nil {
		return fmt.Errorf("failed to migrate store tables: %w", err)
	}

	m.rooms = NewRoomRepository(m.db)
	m.chats = NewChatRepository(m.db)

	log.Println("[store] Module started")
	return nil
}

// Stop shuts down the module. The database is owned by main and closed there.
func (m *StoreModule) Stop(_ context.Context) error {
	log.Println("[store] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *StoreModule) Health(_ context.Context) mono.HealthStatus {
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *StoreModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceFindRoom,
		json.Unmarshal,
		json.Marshal,
		m.handleFindRoom,
	); err != nil {
		return fmt.Errorf("failed to register find-room service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceFindRoomBySlug,
		json.Unmarshal,
		json.Marshal,
		m.handleFindRoomBySlug,
	); err != nil {
		return fmt.Errorf("failed to register find-room-by-slug service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceCreateRoom,
		json.Unmarshal,
		json.Marshal,
		m.handleCreateRoom,
	); err != nil {
		return fmt.Errorf("failed to register create-room service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceCreateMessage,
		json.Unmarshal,
		json.Marshal,
		m.handleCreateMessage,
	); err != nil {
		return fmt.Errorf("failed to register create-message service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceRoomHistory,
		json.Unmarshal,
		json.Marshal,
		m.handleRoomHistory,
	); err != nil {
		return fmt.Errorf("failed to register room-history service: %w", err)
	}

	log.Printf("[store] Registered services: find-room, find-room-by-slug, create-room, create-message, room-history")
	return nil
}

// handleFindRoom resolves a room by numeric id. A missing room is reported
// through Found=false so callers can distinguish nonexistence from datastore
// failure.
func (m *StoreModule) handleFindRoom(_ context.Context, req FindRoomRequest, _ *mono.Msg) (FindRoomResponse, error) {
	room, err := m.rooms.FindByID(req.RoomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return FindRoomResponse{Found: false}, nil
		}
		return FindRoomResponse{}, err
	}
	return FindRoomResponse{Found: true, Room: room}, nil
}

// handleFindRoomBySlug resolves a room by slug.
func (m *StoreModule) handleFindRoomBySlug(_ context.Context, req FindRoomBySlugRequest, _ *mono.Msg) (FindRoomBySlugResponse, error) {
	room, err := m.rooms.FindBySlug(req.Slug)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return FindRoomBySlugResponse{Found: false}, nil
		}
		return FindRoomBySlugResponse{}, err
	}
	return FindRoomBySlugResponse{Found: true, Room: room}, nil
}

// handleCreateRoom creates a room and publishes a RoomCreated event.
func (m *StoreModule) handleCreateRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	room, err := m.rooms.Create(req.Slug, req.AdminID)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	event := events.RoomCreatedEvent{
		RoomID:    room.ID,
		Slug:      room.Slug,
		AdminID:   room.AdminID,
		Timestamp: time.Now(),
	}
	if err := events.RoomCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish RoomCreated event", "error", err)
	}

	return CreateRoomResponse{Room: room}, nil
}

// handleCreateMessage persists one chat message.
func (m *StoreModule) handleCreateMessage(_ context.Context, req CreateMessageRequest, _ *mono.Msg) (CreateMessageResponse, error) {
	chat, err := m.chats.Create(req.RoomID, req.UserID, req.Message)
	if err != nil {
		return CreateMessageResponse{}, err
	}
	return CreateMessageResponse{Chat: chat}, nil
}

// handleRoomHistory returns recent messages for a room.
func (m *StoreModule) handleRoomHistory(_ context.Context, req RoomHistoryRequest, _ *mono.Msg) (RoomHistoryResponse, error) {
	messages, err := m.chats.History(req.RoomID)
	if err != nil {
		return RoomHistoryResponse{}, err
	}
	return RoomHistoryResponse{Messages: messages}, nil
}
