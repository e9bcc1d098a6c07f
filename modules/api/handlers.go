package api

import (
	"errors"
	"log"
	"strconv"

	"github.com/ghagevaibhav/CanvasFlow/modules/store"
	"github.com/gofiber/fiber/v2"
)

const maxRoomNameLength = 100

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	m.app.Post("/signup", m.signup)
	m.app.Post("/signin", m.signin)
	m.app.Post("/logout", m.logout)

	room := m.app.Group("/room", m.requireAuth)
	room.Post("/create", m.createRoom)
	room.Get("/chats/:roomId", m.getChats)
	room.Get("/:slug", m.getRoomBySlug)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
		},
	})
}

// signup handles POST /signup.
func (m *APIModule) signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" ||
		len(req.Password) < 8 || len(req.Password) > 72 {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{
			Message: "Invalid input data",
		})
	}

	resp, err := m.auth.Signup(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		log.Printf("[api] Signup failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{
			Message: "Email already exists",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// signin handles POST /signin. On success the response carries a bearer
// token for the WebSocket handshake.
func (m *APIModule) signin(c *fiber.Ctx) error {
	var req SigninRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{
			Message: "Invalid input data",
		})
	}

	resp, err := m.auth.Signin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(MessageResponse{
			Message: "Invalid email or password",
		})
	}

	// Set the cookie for browser clients; API clients use the body token.
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    resp.Token,
		HTTPOnly: true,
		MaxAge:   int(resp.ExpiresIn),
	})

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// logout handles POST /logout.
func (m *APIModule) logout(c *fiber.Ctx) error {
	c.ClearCookie("token")
	return c.JSON(MessageResponse{Message: "Logged out successfully"})
}

// createRoom handles POST /room/create.
func (m *APIModule) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" || len(req.Name) > maxRoomNameLength {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{
			Message: "Invalid input data",
		})
	}

	userID, _ := c.Locals(localUserID).(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(MessageResponse{
			Message: "Unauthorized",
		})
	}

	room, err := m.store.CreateRoom(c.UserContext(), req.Name, userID)
	if err != nil {
		log.Printf("[api] Room creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(MessageResponse{
			Message: "Something went wrong server side",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(CreateRoomResponse{
		Message: "Room created successfully",
		RoomID:  room.ID,
	})
}

// getChats handles GET /room/chats/:roomId — the most recent messages for
// a room, newest first, capped at the store's history limit.
func (m *APIModule) getChats(c *fiber.Ctx) error {
	roomID, err := strconv.ParseUint(c.Params("roomId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{
			Message: "Invalid room ID",
		})
	}

	messages, err := m.store.RoomHistory(c.UserContext(), uint(roomID))
	if err != nil {
		log.Printf("[api] History fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(MessageResponse{
			Message: "Something went wrong server side while fetching chats",
		})
	}

	return c.JSON(ChatsResponse{Messages: messages})
}

// getRoomBySlug handles GET /room/:slug.
func (m *APIModule) getRoomBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	room, err := m.store.FindRoomBySlug(c.UserContext(), slug)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return c.JSON(RoomResponse{Room: nil})
		}
		log.Printf("[api] Room lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(MessageResponse{
			Message: "Something went wrong server side",
		})
	}

	return c.JSON(RoomResponse{Room: room})
}
