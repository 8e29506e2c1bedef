package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/redmonkez12/go-tasks-api/docs" // Swagger docs
	"github.com/redmonkez12/go-tasks-api/internal/auth"
	"github.com/redmonkez12/go-tasks-api/internal/config"
	"github.com/redmonkez12/go-tasks-api/internal/database"
	"github.com/redmonkez12/go-tasks-api/internal/health"
	httpServer "github.com/redmonkez12/go-tasks-api/internal/http"
	"github.com/redmonkez12/go-tasks-api/internal/logging"
	"github.com/redmonkez12/go-tasks-api/internal/task"
	"github.com/redmonkez12/go-tasks-api/internal/user"
)

// @title           Tasks API
// @version         1.0
// @description     Task management API with stateless JWT or PASETO authentication.

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	rootCmd := &cobra.Command{
		Use:           "api",
		Short:         "Tasks API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(serveCmd, newMigrateCommand())

	// Allow running without subcommand (default to serve)
	rootCmd.RunE = serveCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"token_strategy", cfg.Auth.TokenStrategy,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.MigrateUp(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations applied", "count", applied)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = initRedis(ctx, cfg.Redis, logger)
		defer redisClient.Close()
	}

	tokens, err := auth.NewTokensFromSecrets(
		cfg.Auth.TokenStrategy,
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	authService, err := auth.NewService(user.NewRepository(db), auth.NewHasher(auth.DefaultHasherParams), tokens, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}

	var taskStore task.Store = task.NewRepository(db)
	if redisClient != nil {
		taskStore = task.NewCachedStore(taskStore, redisClient, cfg.Tasks.CacheTTL, logger)
	}

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:           auth.NewHandler(authService),
		AuthMiddleware: auth.NewMiddleware(tokens),
		Tasks:          task.NewHandler(task.NewService(taskStore)),
		Health:         health.NewHandler(health.NewChecker(db.DB, redisClient, 0)),
	}, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis creates the cache client. An unreachable Redis is logged but not
// fatal: the task cache falls through to the database.
func initRedis(ctx context.Context, cfg config.RedisConfig, logger *logging.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, task cache will fall through", "addr", cfg.Address(), "error", err.Error())
	}

	return client
}
