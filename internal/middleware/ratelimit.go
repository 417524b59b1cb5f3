package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Per-surface rate limits. Keys are the authenticated user when available,
// the client IP otherwise.
var (
	// StrictRateLimiter guards credential endpoints.
	StrictRateLimiter = newLimiter(5, 15*time.Minute)

	// MessageRateLimiter caps chat sends per user.
	MessageRateLimiter = newLimiter(30, time.Minute)

	// RelaxedRateLimiter covers read-heavy directory endpoints.
	RelaxedRateLimiter = newLimiter(100, time.Minute)

	// UploadRateLimiter caps avatar uploads.
	UploadRateLimiter = newLimiter(10, 5*time.Minute)
)

func newLimiter(max int, window time.Duration) func() fiber.Handler {
	return func() fiber.Handler {
		return limiter.New(limiter.Config{
			Max:        max,
			Expiration: window,
			KeyGenerator: func(c *fiber.Ctx) string {
				if userID := GetUserID(c); userID != "" {
					return userID
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"success": false,
					"error":   "Too many requests, please try again later",
				})
			},
		})
	}
}
