package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const localUserID = "userID"

// requireAuth validates the bearer token (Authorization header or token
// cookie) and confirms the user still exists before letting the request
// through. The resolved user id lands in c.Locals(localUserID).
func (m *APIModule) requireAuth(c *fiber.Ctx) error {
	token := c.Cookies("token")
	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = after
		}
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(MessageResponse{
			Message: "Authentication required",
		})
	}

	userID, err := m.auth.VerifyToken(c.UserContext(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(MessageResponse{
			Message: "Invalid token",
		})
	}

	if _, err := m.auth.GetUser(c.UserContext(), userID); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(MessageResponse{
			Message: "User not found",
		})
	}

	c.Locals(localUserID, userID)
	return c.Next()
}
