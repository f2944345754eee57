// Package db opens the gorm connection used by the repositories and keeps the schema current.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blog_backend/internal/platform/config"
)

// retryInterval is the pause between two connection attempts.
const retryInterval = 3 * time.Second

// Config holds the connection parameters needed to build a DSN.
type Config struct {
	Driver     string
	User       string
	Password   string
	Name       string
	Host       string
	Port       string
	SSLMode    string
	SQLitePath string
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfig extracts connection parameters from the application configuration.
func LoadConfig(cfg config.DatabaseConfig) Config {
	return Config{
		Driver:     cfg.Driver,
		User:       cfg.User,
		Password:   cfg.Password,
		Name:       cfg.Name,
		Host:       cfg.Host,
		Port:       cfg.Port,
		SSLMode:    cfg.SSLMode,
		SQLitePath: cfg.SQLitePath,
	}
}

// BuildDSN returns the DSN for the configured driver.
func BuildDSN(cfg Config) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.SQLitePath
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, sslmode)
}

// ConnectWithRetry calls opener until it succeeds or the timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects to the configured database and applies migrations when enabled.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	dbCfg := LoadConfig(cfg)
	dsn := BuildDSN(dbCfg)

	var opener Opener
	switch dbCfg.Driver {
	case config.DriverPostgres:
		opener = func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		}
	case config.DriverSQLite:
		opener = OpenSQLite
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}

	db, err := ConnectWithRetry(dsn, cfg.ConnectWait, opener)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := Migrate(ctx, db, dbCfg.Driver); err != nil {
			return nil, err
		}
	}

	slog.Info("database connection established", "driver", dbCfg.Driver)
	return db, nil
}

// OpenSQLite opens a sqlite database limited to a single connection, so ":memory:" databases
// are shared by every caller.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enabling sqlite foreign keys: %w", err)
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}
