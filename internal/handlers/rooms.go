package handlers

import (
	"github.com/gofiber/fiber/v2"

	"voxroom/server/internal/models"
	"voxroom/server/internal/rooms"
)

// CreateRoom creates a new room owned by the caller
func CreateRoom(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req rooms.CreateRoomInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	room, err := Rooms.Create(c.Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    room,
	})
}

// ListRooms returns the room directory: live rooms, upcoming scheduled
// rooms, and the trending subset
func ListRooms(c *fiber.Ctx) error {
	live, upcoming, err := Rooms.Directory(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	trending, err := Rooms.Trending(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	if live == nil {
		live = []models.Room{}
	}
	if upcoming == nil {
		upcoming = []models.Room{}
	}
	if trending == nil {
		trending = []models.Room{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"rooms":    live,
			"upcoming": upcoming,
			"trending": trending,
		},
	})
}

// SearchRooms filters the active directory
func SearchRooms(c *fiber.Ctx) error {
	filters := rooms.SearchFilters{
		Topic:     c.Query("topic"),
		CreatedBy: c.Query("createdBy"),
	}
	if v := c.Query("isPrivate"); v != "" {
		isPrivate := v == "true"
		filters.IsPrivate = &isPrivate
	}

	results, err := Rooms.Search(c.Context(), c.Query("q"), filters)
	if err != nil {
		return respondError(c, err)
	}
	if results == nil {
		results = []models.Room{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    results,
	})
}

// GetRoom returns one room by id
func GetRoom(c *fiber.Ctx) error {
	room, err := Rooms.Get(c.Context(), c.Params("roomId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    room,
	})
}

// JoinRoom adds the caller to a room and activates it as their session
func JoinRoom(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	room, err := Rooms.Join(c.Context(), user, c.Params("roomId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    room,
	})
}

// LeaveRoom removes the caller from their active room
func LeaveRoom(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := Rooms.Leave(c.Context(), user); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "You have left the room",
	})
}

// PromoteModerator adds a member of the caller's active room to its
// moderator set
func PromoteModerator(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := Rooms.Promote(c.Context(), user, c.Params("userId")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User promoted to moderator",
	})
}

// RemoveFromRoom expels a member from the caller's active room
func RemoveFromRoom(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := Rooms.Remove(c.Context(), user, c.Params("userId")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User removed from room",
	})
}

// EndRoom transitions a room to ended (creator only)
func EndRoom(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := Rooms.End(c.Context(), user, c.Params("roomId")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Room ended",
	})
}

// DeleteRoom permanently deletes a room and all its messages. Irreversible;
// the caller must confirm explicitly.
func DeleteRoom(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Deletion is permanent; pass confirm=true to proceed",
		})
	}

	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := Rooms.Delete(c.Context(), user, c.Params("roomId")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Room and all its messages have been permanently deleted",
	})
}
