package middleware

import (
	"log/slog"
	"strings"

	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Session keys written at login.
const (
	SessionUserIDKey = "user_id"
	SessionEmailKey  = "email"
)

const currentUserKey = "current_user"

// CurrentUser identifies the authenticated caller for the duration of a request.
type CurrentUser struct {
	ID    uint
	Email string
}

// GetCurrentUser returns the caller resolved for this request, or nil.
func GetCurrentUser(c *fiber.Ctx) *CurrentUser {
	user, _ := c.Locals(currentUserKey).(*CurrentUser)
	return user
}

// LoadCurrentUser resolves the session cookie into a CurrentUser stored on the
// request context. Requests without a valid session pass through anonymously.
func LoadCurrentUser(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			slog.Warn("Failed to load session", "path", c.Path(), "error", err)
			return c.Next()
		}
		if sess.Fresh() {
			return c.Next()
		}

		userID, ok := sess.Get(SessionUserIDKey).(uint)
		if !ok || userID == 0 {
			return c.Next()
		}
		email, _ := sess.Get(SessionEmailKey).(string)
		c.Locals(currentUserKey, &CurrentUser{ID: userID, Email: email})
		return c.Next()
	}
}

// AuthRequired rejects requests that carry neither a session nor a valid
// "Authorization: Bearer <token>" header.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetCurrentUser(c) != nil {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			slog.Info("JWT validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// JSON numbers decode as float64.
		rawID, _ := claims["user_id"].(float64)
		if rawID < 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}
		email, _ := claims["email"].(string)
		c.Locals(currentUserKey, &CurrentUser{ID: uint(rawID), Email: email})
		return c.Next()
	}
}
