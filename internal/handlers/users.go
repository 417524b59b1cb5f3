package handlers

import (
	"github.com/gofiber/fiber/v2"

	"voxroom/server/internal/roomerr"
	"voxroom/server/internal/store"
)

// UpdateProfileRequest represents profile update request body. Omitted
// fields are left untouched.
type UpdateProfileRequest struct {
	DisplayName *string  `json:"displayName,omitempty"`
	Bio         *string  `json:"bio,omitempty"`
	PhotoURL    *string  `json:"photoURL,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// GetUser returns a user's public profile
func GetUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	user, err := Users.GetUserByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return respondError(c, roomerr.ErrNotFound)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":     user.ToResponse(),
			"isOnline": WSHub.IsUserOnline(userID),
		},
	})
}

// UpdateProfile applies a partial update to the caller's profile
func UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.DisplayName != nil && *req.DisplayName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Display name cannot be empty",
		})
	}

	user, err := Users.UpdateProfile(c.Context(), userID, store.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		PhotoURL:    req.PhotoURL,
		Interests:   req.Interests,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user.ToResponse(),
	})
}

// FollowUser adds the target to the caller's following set and the caller
// to the target's followers set. Both sides are atomic set operations in
// the store; repeat calls converge.
func FollowUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	targetID := c.Params("userId")

	if targetID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "You cannot follow yourself",
		})
	}

	target, err := Users.GetUserByID(c.Context(), targetID)
	if err != nil {
		return respondError(c, err)
	}
	if target == nil {
		return respondError(c, roomerr.ErrNotFound)
	}

	if err := Users.Follow(c.Context(), userID, targetID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Now following " + target.DisplayName,
	})
}

// UnfollowUser reverses FollowUser
func UnfollowUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	targetID := c.Params("userId")

	if err := Users.Unfollow(c.Context(), userID, targetID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Unfollowed",
	})
}
