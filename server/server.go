package server

import (
	"errors"
	"fmt"
	"time"

	"frontend/apiclient"
	"frontend/clients"
	"frontend/config"
	"frontend/handlers"
	"frontend/models"
	"frontend/web"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const AppName = "frontend-gateway"

// New builds the gateway: proxy API, pages, health and metrics.
func New(cfg *config.Config, baseLogger log.Logger) (*fiber.App, error) {
	engine, err := web.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	backend := clients.NewClient(cfg.Backend.URL, clients.NewHTTPClient(cfg.HTTPClient.Timeout), log.With(baseLogger, "component", "backend"))
	h := handlers.NewHandler(cfg, backend, baseLogger)
	pages := web.NewPages(apiclient.New(cfg.Server.PublicURL), baseLogger)

	app := fiber.New(fiber.Config{
		AppName:                      AppName,
		BodyLimit:                    cfg.Server.BodyLimit,
		IdleTimeout:                  120 * time.Second,
		ReadBufferSize:               8192,
		WriteBufferSize:              8192,
		StreamRequestBody:            true,
		DisablePreParseMultipartForm: true,
		DisableStartupMessage:        true,
		Views:                        engine,
		ErrorHandler:                 errorHandler(baseLogger),
	})

	// Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// Rate limiting for API protection
	if cfg.Limiter.Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Limiter.Max,
			Expiration: cfg.Limiter.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
					Error: "rate limit exceeded",
				})
			},
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Request-ID",
		AllowCredentials: false,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	h.RegisterRoutes(app)
	pages.RegisterRoutes(app)

	return app, nil
}

// errorHandler renders fiber errors and recovered panics as the JSON error envelope.
func errorHandler(l log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			level.Error(l).Log("msg", "request failed", "method", c.Method(), "path", c.Path(), "err", err)
		}
		return c.Status(code).JSON(models.ErrorResponse{Error: err.Error()})
	}
}
