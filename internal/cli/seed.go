package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"sleep-quiz-service/internal/config"
	"sleep-quiz-service/internal/domain"
	"sleep-quiz-service/internal/infra/postgres"
	redisinfra "sleep-quiz-service/internal/infra/redis"
	"sleep-quiz-service/internal/logging"
)

// NewSeedCmd stores the built-in sleep catalog in Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store the built-in sleep catalog and drop its cached copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	logger := logging.New(appName, cfg.Log.Env, cfg.Log.Level)

	doc := domain.SleepCatalogDocument()
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := postgres.NewCatalogLoader(pool).SaveCatalog(ctx, doc); err != nil {
		return err
	}
	logger.Info().Str("version", doc.Version).Int("questions", len(doc.Questions)).Msg("catalog stored")

	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()
	cache := redisinfra.NewCatalogRepository(client, nil, time.Minute)
	if err := cache.Invalidate(ctx, doc.Version); err != nil {
		logger.Warn().Err(err).Msg("failed to drop cached catalog")
	}
	return nil
}
