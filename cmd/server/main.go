package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"blog_backend/internal/app/di"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
	"blog_backend/internal/platform/logging"
	infraredis "blog_backend/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .envを読み込む（なければ環境変数のみ）
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Logging, cfg.Env))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}
	}()

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache and token revocation.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      di.NewApp(cfg, gdb, rdb),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "db_driver", cfg.Database.Driver, "redis", rdb != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
