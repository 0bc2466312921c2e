package handlers

import (
	"errors"
	"log/slog"

	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Response messages shared by handlers and the error mapper.
const (
	msgPostNotFound       = "Blog post not found"
	msgInvalidCredentials = "Invalid email or password"
	msgInternalError      = "Internal server error"
)

// writeError maps a service error onto an HTTP status and a JSON error body.
// Unknown errors are logged and reported as an opaque 500.
func writeError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": msgInvalidCredentials,
		})
	case errors.Is(err, services.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": msgPostNotFound,
		})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": conflictErr.Error(),
		})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	default:
		slog.Error("Unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": msgInternalError,
		})
	}
}

// ErrorHandler is the fiber.Config ErrorHandler. It renders errors returned by
// handlers and middleware (unknown routes, recovered panics) as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
