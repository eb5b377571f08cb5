package handlers

import (
	"errors"

	"game-forge/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// AppConfig holds the HTTP-level settings for NewApp.
type AppConfig struct {
	CORSOrigins string
}

// NewApp builds the Fiber app with middleware and the game routes.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "game-forge",
		DisableStartupMessage: true,
		// Generated documents and the HTML sent back for updates are large.
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: ErrorHandler(h.logger),
	})

	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(logging.RequestLogger(h.logger))
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	h.SetupRoutes(app)
	return app
}

// ErrorHandler turns errors escaping a handler into the {"error": ...}
// shape. Anything that is not a *fiber.Error is reported as a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else {
			logger.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
