package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"voxroom/server/internal/chat"
	"voxroom/server/internal/models"
)

// SendMessageRequest represents send message request body
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage posts a message to the caller's active room
func SendMessage(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	msg, err := Rooms.Send(c.Context(), user, req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    msg,
	})
}

// GetMessages returns a room's recent messages in ascending display order.
// With grouped=true the messages arrive bucketed by calendar date; the
// ordering is the same either way.
func GetMessages(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	messages, err := Rooms.Messages(c.Context(), user, c.Params("roomId"))
	if err != nil {
		return respondError(c, err)
	}
	if messages == nil {
		messages = []models.Message{}
	}

	if c.Query("grouped") == "true" {
		loc := time.Local
		if tz := c.Query("tz"); tz != "" {
			if parsed, err := time.LoadLocation(tz); err == nil {
				loc = parsed
			}
		}
		groups := chat.GroupByDate(messages, loc)
		if groups == nil {
			groups = []chat.DateGroup{}
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    groups,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    messages,
	})
}
