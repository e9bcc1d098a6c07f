package wsserver

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ghagevaibhav/CanvasFlow/events"
	"github.com/ghagevaibhav/CanvasFlow/modules/auth"
	"github.com/ghagevaibhav/CanvasFlow/modules/store"
	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// WSModule is the real-time collaboration server: it accepts WebSocket
// connections, authenticates them, tracks room memberships in the
// Registry, and fans chat messages out to room members.
type WSModule struct {
	app      *fiber.App
	registry *Registry
	auth     auth.TokenVerifier
	store    store.Gateway
	eventBus mono.EventBus
	addr     string
}

// Compile-time interface checks.
var _ mono.Module = (*WSModule)(nil)
var _ mono.DependentModule = (*WSModule)(nil)
var _ mono.EventBusAwareModule = (*WSModule)(nil)
var _ mono.EventEmitterModule = (*WSModule)(nil)
var _ mono.HealthCheckableModule = (*WSModule)(nil)

// NewModule creates a new WSModule.
func NewModule() *WSModule {
	port := os.Getenv("WS_PORT")
	if port == "" {
		port = "8080"
	}
	return &WSModule{
		registry: NewRegistry(),
		addr:     ":" + port,
	}
}

// Name returns the module name.
func (m *WSModule) Name() string {
	return "wsserver"
}

// Dependencies returns the list of module dependencies.
func (m *WSModule) Dependencies() []string {
	return []string{"auth", "store"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *WSModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.auth = auth.NewAuthAdapter(container)
	case "store":
		m.store = store.NewStoreAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *WSModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *WSModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
		events.RoomJoinedV1.ToBase(),
		events.RoomLeftV1.ToBase(),
	}
}

// Start brings up the WebSocket listener.
func (m *WSModule) Start(_ context.Context) error {
	if m.auth == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.store == nil {
		return fmt.Errorf("store dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		IdleTimeout:           120 * time.Second,
	})
	m.app.Use(recover.New())

	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleSocket))

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[wsserver] Listener error: %v", err)
		}
	}()

	log.Printf("[wsserver] WebSocket server started on %s", m.addr)
	return nil
}

// Stop shuts down the listener. Connected clients observe a transport
// close, which is their signal to reconnect and re-fetch history.
func (m *WSModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Printf("[wsserver] Shutting down (%d clients connected)", m.registry.Count())
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *WSModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.registry.Count(),
		},
	}
}
