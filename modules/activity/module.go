package activity

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/ghagevaibhav/CanvasFlow/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityModule consumes collaboration events and keeps process-lifetime
// counters. It sits off the hot path: broadcasts do not wait for it.
type ActivityModule struct {
	messagesSent atomic.Uint64
	roomsJoined  atomic.Uint64
	roomsLeft    atomic.Uint64
	roomsCreated atomic.Uint64
}

// Compile-time interface checks.
var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

// NewModule creates a new ActivityModule.
func NewModule() *ActivityModule {
	return &ActivityModule{}
}

// Name returns the module name.
func (m *ActivityModule) Name() string {
	return "activity"
}

// Start initializes the module.
func (m *ActivityModule) Start(_ context.Context) error {
	log.Println("[activity] Module started")
	return nil
}

// Stop logs the final counters on the way out.
func (m *ActivityModule) Stop(_ context.Context) error {
	log.Printf("[activity] Module stopped (messages=%d joins=%d leaves=%d rooms=%d)",
		m.messagesSent.Load(), m.roomsJoined.Load(), m.roomsLeft.Load(), m.roomsCreated.Load())
	return nil
}

// Health returns the health status with current counters.
func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"messages_sent": m.messagesSent.Load(),
			"rooms_joined":  m.roomsJoined.Load(),
			"rooms_left":    m.roomsLeft.Load(),
			"rooms_created": m.roomsCreated.Load(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomJoinedV1, m.handleRoomJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomLeftV1, m.handleRoomLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	log.Println("[activity] Registered event consumers: MessageSent, RoomJoined, RoomLeft, RoomCreated")
	return nil
}

func (m *ActivityModule) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.messagesSent.Add(1)
	log.Printf("[activity] Message %s in room %d by %s", event.MessageID, event.RoomID, event.UserID)
	return nil
}

func (m *ActivityModule) handleRoomJoined(_ context.Context, event events.RoomJoinedEvent, _ *mono.Msg) error {
	m.roomsJoined.Add(1)
	return nil
}

func (m *ActivityModule) handleRoomLeft(_ context.Context, event events.RoomLeftEvent, _ *mono.Msg) error {
	m.roomsLeft.Add(1)
	return nil
}

func (m *ActivityModule) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.roomsCreated.Add(1)
	log.Printf("[activity] Room %d (%s) created by %s", event.RoomID, event.Slug, event.AdminID)
	return nil
}
