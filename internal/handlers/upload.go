package handlers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"voxroom/server/internal/store"
)

const (
	MaxAvatarSize    = 2 * 1024 * 1024 // 2MB
	UploadDir        = "./uploads"
	AllowedImageExts = ".jpg,.jpeg,.png,.gif,.webp"
)

// UploadAvatar stores the caller's profile picture and points their
// profile at the resulting URL.
func UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No file uploaded",
		})
	}

	if file.Size > MaxAvatarSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("File size exceeds limit of 2MB (uploaded: %.2fMB)", float64(file.Size)/(1024*1024)),
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !strings.Contains(AllowedImageExts, ext) || ext == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("File extension %s not allowed for avatars", ext),
		})
	}

	filename := fmt.Sprintf("%s-%d%s", uuid.New().String(), time.Now().Unix(), ext)
	fullPath := filepath.Join(UploadDir, "avatars", filename)

	if err := c.SaveFile(file, fullPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save file",
		})
	}

	photoURL := fmt.Sprintf("/uploads/avatars/%s", filename)
	user, err := Users.UpdateProfile(c.Context(), userID, store.ProfileUpdate{PhotoURL: &photoURL})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"photoURL": photoURL,
			"user":     user.ToResponse(),
		},
	})
}

// GetFile serves an uploaded avatar
func GetFile(c *fiber.Ctx) error {
	filename := c.Params("filename")

	// Prevent path traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid filename",
		})
	}

	return c.SendFile(filepath.Join(UploadDir, "avatars", filename))
}
