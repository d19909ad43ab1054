package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paperaudit/internal/adapter"
	"paperaudit/internal/adapter/audit"
	"paperaudit/internal/adapter/extract"
	"paperaudit/internal/cache"
	"paperaudit/internal/config"
	"paperaudit/internal/database"
	"paperaudit/internal/domain"
	"paperaudit/internal/logger"
	"paperaudit/internal/repository"
	"paperaudit/internal/service"
	"paperaudit/internal/validation"
)

// Deps holds the high-level dependencies for commands.
type Deps struct {
	Config   *config.Config
	Workflow service.WorkflowService
}

// withDeps loads config and builds the workflow, then calls the provided
// function. It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	var auditor domain.AuditClient
	switch cfg.Audit.Provider {
	case "gemini":
		auditor, err = audit.NewGeminiAuditor(ctx, cfg.Audit)
	case "openai":
		auditor, err = audit.NewOpenAIAuditor(cfg.Audit)
	default:
		return fmt.Errorf("unsupported audit provider %q", cfg.Audit.Provider)
	}
	if err != nil {
		return fmt.Errorf("creating audit client: %w", err)
	}

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	var auditCache *service.AuditCacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Get().Warn("Redis unavailable, audit results will not be cached", zap.Error(err))
		} else {
			auditCache = service.NewAuditCacheService(
				adapter.NewRedisCacheAdapter(redisClient), cfg.Cache.TTL)
		}
	}

	workflow := service.NewWorkflowService(
		repository.NewPaperDatabaseAdapter(db),
		auditor,
		extract.NewLocalExtractor(),
		auditCache,
		validation.NewValidator(),
		cfg,
	)
	if err := workflow.Restore(ctx); err != nil {
		return fmt.Errorf("restoring working session: %w", err)
	}

	return fn(&Deps{Config: cfg, Workflow: workflow})
}
