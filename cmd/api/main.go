package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"paperaudit/internal/adapter"
	"paperaudit/internal/adapter/audit"
	"paperaudit/internal/adapter/extract"
	"paperaudit/internal/cache"
	"paperaudit/internal/config"
	"paperaudit/internal/database"
	"paperaudit/internal/domain"
	"paperaudit/internal/handler"
	"paperaudit/internal/logger"
	"paperaudit/internal/middleware"
	"paperaudit/internal/repository"
	"paperaudit/internal/service"
	"paperaudit/internal/validation"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	// Audit engine, selected by provider.
	var auditor domain.AuditClient
	switch cfg.Audit.Provider {
	case "gemini":
		appLogger.Info("Initializing Gemini audit client", zap.String("model", cfg.Audit.Model))
		auditor, err = audit.NewGeminiAuditor(ctx, cfg.Audit)
		if err != nil {
			appLogger.Fatal("Failed to create Gemini audit client", zap.Error(err))
		}
	case "openai":
		appLogger.Info("Initializing OpenAI audit client", zap.String("model", cfg.Audit.Model))
		auditor, err = audit.NewOpenAIAuditor(cfg.Audit)
		if err != nil {
			appLogger.Fatal("Failed to create OpenAI audit client", zap.Error(err))
		}
	default:
		appLogger.Fatal("Unsupported audit provider", zap.String("provider", cfg.Audit.Provider))
	}

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Successfully connected to Oracle database")

	paperStore := repository.NewPaperDatabaseAdapter(db)

	// The audit cache is optional; a missing redis only costs repeat model
	// calls.
	var auditCache *service.AuditCacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, audit results will not be cached", zap.Error(err))
		} else {
			appLogger.Info("Successfully connected to Redis")
			cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
			auditCache = service.NewAuditCacheService(cacheAdapter, cfg.Cache.TTL)
		}
	}

	workflow := service.NewWorkflowService(
		paperStore,
		auditor,
		extract.NewLocalExtractor(),
		auditCache,
		validation.NewValidator(),
		cfg,
	)
	if err := workflow.Restore(ctx); err != nil {
		appLogger.Warn("Failed to restore working session", zap.Error(err))
	}

	paperHandler := handler.NewPaperHandler(workflow)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    25 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	paperHandler.RegisterRoutes(app.Group("/api"))

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
