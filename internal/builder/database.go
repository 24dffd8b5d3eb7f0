package builder

import (
	"context"
	"fmt"

	"github.com/futig/triage-backend/internal/config"
	"github.com/futig/triage-backend/internal/repository"
	"github.com/futig/triage-backend/internal/telegram/state"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// storage groups the repositories used by the HTTP server and the bot
type storage struct {
	db            *pgxpool.Pool
	sessions      repository.SessionRepository
	telegramState state.Storage
}

func (s *storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// setupStorage puts the TTL caches in front of Postgres, or uses the caches alone when DATABASE_URL is empty
func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	cacheCfg := cfg.SessionCacheCfg

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is not set, sessions are kept in memory only")
		return &storage{
			sessions:      repository.NewSessionCache(cacheCfg.TTL, cacheCfg.CleanupInterval, nil),
			telegramState: repository.NewTelegramStateCache(cacheCfg.TTL, cacheCfg.CleanupInterval, nil),
		}, nil
	}

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	return &storage{
		db: db,
		sessions: repository.NewSessionCache(cacheCfg.TTL, cacheCfg.CleanupInterval,
			repository.NewSessionPostgres(db)),
		telegramState: repository.NewTelegramStateCache(cacheCfg.TTL, cacheCfg.CleanupInterval,
			repository.NewTelegramStatePostgres(db)),
	}, nil
}

// setupDatabase creates a new database connection pool
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
		zap.Duration("health_check_period", poolConfig.HealthCheckPeriod),
	)

	return pool, nil
}
