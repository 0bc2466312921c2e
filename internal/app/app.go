// Package app assembles the HTTP application from its configuration and
// collaborators.
package app

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/handlers"
	"blog/internal/middleware"
	"blog/internal/repositories"
	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
	"gorm.io/gorm"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session_id"

// App bundles the fiber application with the services it serves.
type App struct {
	Fiber          *fiber.App
	DB             *gorm.DB
	Sessions       *session.Store
	SessionStorage *repositories.GORMSessionStorage
	AuthService    *services.AuthService
	PostService    *services.PostService
}

const cookieKeyInfo = "blog session cookie"

// CookieKey derives the base64 AES-256 key encryptcookie expects from an
// arbitrary SESSION_SECRET.
func CookieKey(secret string) (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo)), key); err != nil {
		return "", fmt.Errorf("failed to derive cookie key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Options tweaks New for callers that need it.
type Options struct {
	// Publisher receives post events; nil disables publishing.
	Publisher services.EventPublisher
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// New wires repositories, services, handlers and middleware on top of db.
// The schema is expected to be migrated already.
func New(cfg *config.Config, db *gorm.DB, opts Options) *App {
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)
	sessionStorage := repositories.NewGORMSessionStorage(db)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	postService := services.NewPostService(postRepo, userRepo, opts.Publisher, cfg.MaxPerPage)

	sessions := session.New(session.Config{
		Expiration:     cfg.SessionExpiration,
		Storage:        sessionStorage,
		KeyLookup:      "cookie:" + SessionCookieName,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		KeyGenerator:   func() string { return uuid.New().String() },
	})

	cookieKey := encryptcookie.GenerateKey()
	if cfg.SessionSecret == "" {
		slog.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	} else if derived, err := CookieKey(cfg.SessionSecret); err != nil {
		slog.Error("Falling back to a random cookie key", "error", err)
	} else {
		cookieKey = derived
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(encryptcookie.New(encryptcookie.Config{Key: cookieKey}))
	app.Use(middleware.LoadCurrentUser(sessions))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(db); err != nil {
			slog.Error("Health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "down",
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
		})
	})

	handlers.NewAuthHandler(authService, sessions).RegisterRoutes(app)
	handlers.NewPostHandler(postService).RegisterRoutes(app)

	return &App{
		Fiber:          app,
		DB:             db,
		Sessions:       sessions,
		SessionStorage: sessionStorage,
		AuthService:    authService,
		PostService:    postService,
	}
}
