package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sleep-quiz-service/internal/app"
	"sleep-quiz-service/internal/config"
	"sleep-quiz-service/internal/domain"
	"sleep-quiz-service/internal/infra/memory"
	"sleep-quiz-service/internal/infra/postgres"
	redisinfra "sleep-quiz-service/internal/infra/redis"
	"sleep-quiz-service/internal/infra/rest"
	"sleep-quiz-service/internal/logging"
	transport "sleep-quiz-service/internal/transport/http"
)

const appName = "sleep-quiz"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the questionnaire server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(appName, cfg.Log.Env, cfg.Log.Level)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
	}

	builtin := memory.NewStaticCatalogLoader(domain.SleepCatalogDocument())
	var loader memory.CatalogLoader = builtin
	if pool != nil {
		loader = memory.NewFallbackCatalogLoader(postgres.NewCatalogLoader(pool), builtin, logger)
	}

	catalogTTL := config.TTLDuration(cfg.Quiz.CatalogTTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		sessions = memory.NewSessionStore()
	}

	service := app.NewQuizService(sessions, catalogs, responseStore(cfg, pool, logger), app.ServiceOptions{
		Version:       cfg.Quiz.Version,
		SubmitTimeout: config.TTLDuration(cfg.Quiz.SubmitTimeout, app.DefaultSubmitTimeout),
		Logger:        logger,
		Metrics:       app.NewMetrics(prometheus.DefaultRegisterer),
	})

	// fail fast on a missing or malformed catalog
	if _, err := service.Catalog(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(service, transport.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger,
			Gatherer:       prometheus.DefaultGatherer,
		}),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Msg("starting sleep quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// responseStore prefers Postgres, then the REST data store, then memory.
func responseStore(cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) app.ResponseStore {
	switch {
	case pool != nil:
		return postgres.NewResponseStore(pool)
	case cfg.REST.URL != "":
		return rest.NewResponseStore(cfg.REST.URL, cfg.REST.APIKey, cfg.REST.Table, nil)
	default:
		logger.Warn().Msg("no response store configured, submissions are kept in memory")
		return memory.NewResponseStore()
	}
}
