package pkg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ugandalearn/learn-service/internal/config"
	"github.com/ugandalearn/learn-service/internal/models"
)

// InitDatabase opens the postgres pool, tunes it and verifies connectivity
func InitDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()
	if cfg.Database.URL == "" && cfg.Database.Name == "" {
		return nil, fmt.Errorf("database is not configured")
	}

	logLevel := gormLogger.Warn
	if cfg.LogLevel == "debug" {
		logLevel = gormLogger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         NewGormLogger(logger, logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns)
	return db, nil
}

// Models lists every table the service owns, in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.UserProfile{},
		&models.Subject{},
		&models.Topic{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}
	return nil
}
