package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ugandalearn/learn-service/internal/config"
	"github.com/ugandalearn/learn-service/internal/events"
	"github.com/ugandalearn/learn-service/internal/handlers"
	"github.com/ugandalearn/learn-service/internal/llm"
	"github.com/ugandalearn/learn-service/internal/repositories"
	"github.com/ugandalearn/learn-service/internal/repositories/postgres"
	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/utils"
	"github.com/ugandalearn/learn-service/internal/validator"
	"github.com/ugandalearn/learn-service/pkg"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slogLogger := newLogger(cfg)
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg, slogLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := pkg.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("Schema migrated")
	}

	// Redis is optional; subject listings fall back to the database
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	repo := repoManager.GetRepository()

	provider, err := llm.NewProvider(ctx, cfg.LLM, slogLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize completion provider: %w", err)
	}

	publisher, err := events.NewPublisher(cfg.Events, slogLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	serviceManager := services.NewServiceManager(repo, provider, publisher, slogLogger, validator.New(), services.ServiceManagerConfig{
		Content: services.ContentConfig{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		},
	})
	if err := serviceManager.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	authenticator, err := handlers.NewAuthenticator(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(cfg, logger, serviceManager, authenticator, repo.Account()),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"llm_provider", cfg.LLM.Provider,
			"model", provider.ModelID(),
			"auth_provider", cfg.Auth.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := serviceManager.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("services shutdown: %w", err))
		}
		if err := repoManager.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("repository shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server exited")
	return nil
}

func newRouter(cfg *config.Config, logger utils.Logger, serviceManager services.ServiceManager, authenticator handlers.Authenticator, accounts repositories.AccountRepository) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.RequestTimeout)
	handlers.NewHandlerManager(serviceManager, authenticator, accounts, logger).SetupRoutes(router)
	return router
}
