// Package server provides the HTTP surface: routing, middleware and the
// mapping from pipeline errors to status codes. The query semantics live
// in internal/service; nothing here touches upstream or the cache directly.
package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"postwatch/internal/config"
	"postwatch/internal/metrics"
	"postwatch/internal/service"
)

// Server wraps the fiber app with its dependencies.
type Server struct {
	app       *fiber.App
	svc       *service.Service
	collector *metrics.Collector
	logger    *slog.Logger
	cfg       config.Config
}

// New creates the HTTP server and registers middleware and routes.
func New(svc *service.Service, collector *metrics.Collector, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "postwatch",
		DisableStartupMessage: true,
	})

	s := &Server{app: app, svc: svc, collector: collector, logger: logger, cfg: cfg}

	app.Use(requestid.New())
	app.Use(LoggingMiddleware(logger))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowOrigins, ","),
		AllowMethods:     "GET,OPTIONS",
		AllowCredentials: true,
	}))

	if max, window, ok := cfg.RateLimitWindow(); ok {
		app.Use(limiter.New(limiter.Config{
			Max:        max,
			Expiration: window,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
			},
		}))
		logger.Info("rate limiter enabled", "limit", cfg.RateLimit)
	} else {
		logger.Info("rate limiter disabled")
	}

	app.Get("/posts", s.handlePosts)
	app.Get("/anomalies", s.handleAnomalies)
	app.Get("/summary", s.handleSummary)
	app.Get("/healthz", s.handleHealthz)
	app.Get("/stats", s.handleStats)

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured port and blocks.
func (s *Server) Listen() error {
	s.logger.Info("starting http server", "port", s.cfg.Port)
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
