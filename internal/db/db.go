package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"plate-registry/internal/config"
)

const (
	connectAttempts   = 3
	connectRetryDelay = 2 * time.Second
)

// New connects to the remote Postgres backend and runs migrations.
// Connectivity is retried a fixed number of times; after the last
// failed attempt the caller is expected to fall back to a local tier
// for the rest of the process lifetime.
func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	var (
		database *gorm.DB
		err      error
	)

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		database, err = gorm.Open(postgres.Open(cfg.Remote.DSN), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			break
		}
		log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", connectAttempts).
			Msg("remote backend connection failed")
		if attempt < connectAttempts {
			time.Sleep(connectRetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("remote backend unreachable after %d attempts: %w", connectAttempts, err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("access underlying connection pool: %w", err)
	}
	if cfg.Remote.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Remote.MaxOpenConns)
	}
	if cfg.Remote.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Remote.MaxIdleConns)
	}
	if cfg.Remote.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Remote.ConnMaxLifetime)
	}

	if err := runMigrations(database); err != nil {
		return nil, err
	}

	return database, nil
}
