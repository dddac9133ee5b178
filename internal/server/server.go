package server

import (
	"context"
	"time"

	"support-chat-be/internal/bootstrap"
	"support-chat-be/internal/config"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/pkg/database"
	"support-chat-be/pkg/ratelimit"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app         *fiber.App
	cfg         *config.Config
	container   *bootstrap.Container
	logger      logger.ILogger
	healthCheck func(ctx context.Context) error
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	s := &Server{
		app:       app,
		cfg:       cfg,
		container: container,
		logger:    container.Logger,
	}
	s.healthCheck = func(ctx context.Context) error {
		return database.Ping(ctx, container.DB)
	}

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(s.logger))

	app.Get("/health", s.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.registerRoutes()

	return s
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.logger.Info("SERVER", "Server is running", map[string]interface{}{
		"address": "http://localhost:" + s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/chat")

	s.container.UserController.RegisterRoutes(api)
	s.container.ChatSessionController.RegisterRoutes(api)
	s.container.MessageController.RegisterRoutes(api)

	var chatMiddlewares []fiber.Handler
	if mw := s.chatLimiter(); mw != nil {
		chatMiddlewares = append(chatMiddlewares, mw)
	}
	s.container.ChatController.RegisterRoutes(api, chatMiddlewares...)
}

// chatLimiter throttles chat turns per client IP. Counters live in Redis when
// it is configured and reachable, otherwise in process memory.
func (s *Server) chatLimiter() fiber.Handler {
	perMinute := s.cfg.RateLimit.ChatPerMinute
	if perMinute <= 0 {
		return nil
	}

	cfg := limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			return "chat:" + ctx.IP()
		},
		LimitReached: func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(serverutils.ErrorResponse(fiber.StatusTooManyRequests, "Too many requests, slow down"))
		},
	}

	if s.container.RedisClient != nil {
		storage := ratelimit.NewRedisStorage(s.container.RedisClient, "")
		if err := storage.Ping(2 * time.Second); err != nil {
			s.logger.Warn("SERVER", "Redis unreachable, rate limiting in memory", map[string]interface{}{
				"error": err,
			})
		} else {
			cfg.Storage = storage
		}
	}

	return limiter.New(cfg)
}

func (s *Server) health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	if err := s.healthCheck(checkCtx); err != nil {
		s.logger.Warn("SERVER", "Health check failed", map[string]interface{}{
			"error":      err,
			"request_id": ctx.Locals("requestid"),
		})
		return ctx.Status(fiber.StatusServiceUnavailable).
			JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "Database unreachable"))
	}

	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"database": "up"}))
}
