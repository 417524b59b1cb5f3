package handlers

import (
	"errors"
	"net"

	"github.com/gofiber/fiber/v2"

	"voxroom/server/internal/models"
	"voxroom/server/internal/roomerr"
	"voxroom/server/internal/rooms"
	"voxroom/server/internal/store"
	ws "voxroom/server/internal/websocket"
)

var (
	// Users is the durable document store.
	Users *store.Postgres

	// Rooms is the membership & session protocol service.
	Rooms *rooms.Service

	// WSHub is the global WebSocket hub instance
	WSHub *ws.Hub
)

// Init wires the handler package's collaborators.
func Init(users *store.Postgres, roomSvc *rooms.Service, hub *ws.Hub) {
	Users = users
	Rooms = roomSvc
	WSHub = hub
}

// respondError maps a protocol error onto the HTTP response envelope.
// Connectivity loss is reported as Unavailable so clients can present
// retry semantics instead of a hard failure.
func respondError(c *fiber.Ctx, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		err = roomerr.ErrUnavailable
	}

	code := roomerr.StatusCode(err)
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// currentUser loads the authenticated user's document. The JWT only proves
// identity; the display name and photo snapshots come from here.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID := c.Locals("userID").(string)

	user, err := Users.GetUserByID(c.Context(), userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, roomerr.ErrNotFound
	}
	return user, nil
}
