package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/voucher_engine/internal/adapters/notification"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_engine/internal/core/services"
	"github.com/SscSPs/voucher_engine/internal/handlers"
	"github.com/SscSPs/voucher_engine/internal/middleware"
	"github.com/SscSPs/voucher_engine/internal/platform/config"
	"github.com/SscSPs/voucher_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/voucher_engine/internal/repositories/memory"
	"github.com/SscSPs/voucher_engine/internal/utils"
	"github.com/SscSPs/voucher_engine/pkg/database"
	"github.com/gin-gonic/gin"
)

// @title Voucher Engine API
// @version 1.0
// @description Voucher posting, approval, numbering and audit.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	var repos portsrepo.RepositoryProvider
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.ClosePgxPool(dbPool)
		logger.Info("Database connection pool established.")

		logger.Info("Running database migrations...")
		applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger)
		if err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if applied {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}
		repos = pgsql.NewRepositoryProvider(dbPool)

		seeder := pgsql.NewAccountSeeder(dbPool)
		for _, a := range cfg.SeedAccounts {
			if err := seeder.SaveAccount(ctx, a.AccountID, a.AccountID, a.IsGroup); err != nil {
				logger.Error("Failed to seed accounts", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
	default:
		store := memory.NewStore()
		for _, a := range cfg.SeedAccounts {
			store.AddAccount(a.AccountID, !a.IsGroup)
		}
		logger.Warn("Using in-memory storage; data is lost on restart")
		repos = store.Provider()
	}
	logger.Info("Chart of accounts seeded", slog.Int("count", len(cfg.SeedAccounts)))

	for _, w := range cfg.Workflows {
		if err := repos.WorkflowRepo.SaveWorkflow(ctx, w); err != nil {
			logger.Error("Failed to load approval workflow", slog.String("workflow_id", w.WorkflowID), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	logger.Info("Approval workflows loaded", slog.Int("count", len(cfg.Workflows)))

	sink, err := notification.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize notifications", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if sink != nil {
		defer func() {
			if cerr := sink.Close(); cerr != nil {
				logger.Error("Error closing notification sink", slog.String("error", cerr.Error()))
			}
		}()
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	serviceContainer := services.NewServiceContainer(cfg, repos, sink)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, posthogClient); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

