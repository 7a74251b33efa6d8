package http

import (
	"errors"
	"time"

	"resume-formatter/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

// NewApp builds the fiber app with every route registered.
func NewApp(h *Handler, bodyLimitMB int) *fiber.App {
	if bodyLimitMB <= 0 {
		bodyLimitMB = 1
	}
	app := fiber.New(fiber.Config{
		AppName:               "resume-formatter",
		BodyLimit:             bodyLimitMB << 20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(requestLogger)
	app.Use(recover.New())

	app.Get("/health", h.Health)
	app.Post("/create-order", h.CreateOrder)
	app.Post("/webhook", h.Webhook)
	app.Post("/generate", h.Generate)
	app.Get("/download/:name", h.Download)
	app.Post("/test-generate", h.TestGenerate)
	return app
}

// requestLogger tags each request with an id and logs one line per request.
func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	reqID := c.Get(fiber.HeaderXRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, reqID)

	l := logger.Logger.With().Str("request_id", reqID).Logger()
	c.SetUserContext(l.WithContext(c.UserContext()))

	err := c.Next()
	if err != nil {
		// let the error handler set the status before logging it
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	l.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := fiber.ErrInternalServerError.Message
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logger.Ctx(c.UserContext()).Error().Err(err).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "error": msg})
}
