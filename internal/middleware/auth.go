package middleware

import (
	"github.com/gofiber/fiber/v2"

	"voxroom/server/internal/utils"
)

const accessCookie = "token"

// AuthMiddleware authenticates the request from the access-token cookie and
// stores the caller's identity in the request locals. Refresh tokens are
// rejected here; they are only good for the refresh endpoint.
func AuthMiddleware(c *fiber.Ctx) error {
	tokenString := c.Cookies(accessCookie)
	if tokenString == "" {
		return unauthorized(c, "no token provided")
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	if claims.Type != "access" {
		return unauthorized(c, "invalid token type")
	}

	c.Locals("userID", claims.UserID)
	return c.Next()
}

func unauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "Unauthorized: " + reason,
	})
}

// GetUserID returns the authenticated user's id, or "" outside an
// authenticated request.
func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("userID").(string)
	return userID
}
