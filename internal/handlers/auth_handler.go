package handlers

import (
	"log/slog"

	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *session.Store
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sessions *session.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
	router.Get("/login", h.HandleLogin)
	router.Post("/logout", h.HandleLogout)
	router.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := validateStruct(h.validate, req); err != nil {
		return writeError(c, err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.authService.RegisterUser(user); err != nil {
		slog.Warn("Registration failed", "username", req.Username, "error", err)
		return writeError(c, err)
	}

	slog.Info("User registered successfully", "username", user.Username, "user_id", user.ID)
	return c.JSON(fiber.Map{
		"message": "User registered successfully",
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" query:"email" validate:"required"`
	Password string `json:"password" query:"password" validate:"required"`
}

// HandleLogin verifies credentials and starts a server-side session. The
// response also carries a bearer token for clients that cannot keep cookies.
// GET requests may pass the credentials as query parameters.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if c.Method() == fiber.MethodGet {
		if err := c.QueryParser(&req); err != nil {
			return writeError(c, services.NewValidationError("query", "Invalid query string"))
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email or password is missing.",
		})
	}

	user, token, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		slog.Info("Login failed", "email", req.Email, "error", err)
		return writeError(c, err)
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return writeError(c, err)
	}
	// A new session ID on every login prevents fixation.
	if err := sess.Regenerate(); err != nil {
		return writeError(c, err)
	}
	sess.Set(middleware.SessionUserIDKey, user.ID)
	sess.Set(middleware.SessionEmailKey, user.Email)
	if err := sess.Save(); err != nil {
		return writeError(c, err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return c.JSON(fiber.Map{
		"message": "Login successful!",
		"token":   token,
	})
}

// HandleLogout clears the caller's session. It always succeeds.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		slog.Warn("Failed to load session on logout", "error", err)
	} else if err := sess.Destroy(); err != nil {
		slog.Warn("Failed to destroy session", "error", err)
	}

	return c.JSON(fiber.Map{
		"message": "Logout successful!",
	})
}

// HandleMe returns the authenticated caller.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)
	user, err := h.authService.GetUserByID(current.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
