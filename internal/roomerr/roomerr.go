package roomerr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for every failure class a room or profile operation can
// surface. Handlers map these to HTTP statuses; everything else is treated
// as an internal error.
var (
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrCapacityExceeded = errors.New("room is at maximum capacity")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("store unavailable")
	ErrValidation       = errors.New("validation failed")
)

// Validationf wraps ErrValidation with a user-facing reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// StatusCode returns the HTTP status for a protocol error.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, ErrCapacityExceeded):
		return fiber.StatusConflict
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
