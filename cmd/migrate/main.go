package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
	"blog_backend/internal/platform/logging"
)

const usage = "usage: migrate [up|down|status]"

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Logging, cfg.Env))

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// マイグレーションはこのコマンドで明示的に実行する
	cfg.Database.RunMigrations = false
	gdb, err := db.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cmd, gdb, cfg.Database.Driver); err != nil {
		slog.Error("migrate failed", "command", cmd, "error", err)
		os.Exit(1)
	}
	slog.Info("migrate ok", "command", cmd)
}

func run(ctx context.Context, cmd string, gdb *gorm.DB, driver string) error {
	switch cmd {
	case "up":
		return db.Migrate(ctx, gdb, driver)
	case "down":
		return db.Rollback(ctx, gdb, driver)
	case "status":
		statuses, err := db.MigrationStatus(ctx, gdb, driver)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%05d  %-9s  %s  %s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q; %s", cmd, usage)
	}
}
