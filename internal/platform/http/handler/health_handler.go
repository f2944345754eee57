// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"blog_backend/internal/api"
)

const (
	statusOK       = "ok"
	statusDegraded = "unavailable"

	defaultCheckTimeout = 2 * time.Second
)

// CheckFunc は依存先の疎通を確認します。
type CheckFunc func(ctx context.Context) error

// HealthHandler は依存先（DB・Redis）の状態を含むヘルスチェックを提供します。
type HealthHandler struct {
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewHealthHandler は名前付きのチェックでHealthHandlerを生成します。
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: defaultCheckTimeout}
}

// DBCheck はデータベースへのPINGを行うチェックを返します。
func DBCheck(db *gorm.DB) CheckFunc {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// RedisCheck はRedisへのPINGを行うチェックを返します。
func RedisCheck(rdb *redis.Client) CheckFunc {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// Health は /healthz と /api/health を処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// いずれかのチェックが失敗した場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	body, healthy := h.run(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}

func (h *HealthHandler) run(ctx context.Context) (api.HealthResponse, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	body := api.HealthResponse{Status: statusOK, Checks: make(map[string]string, len(names))}
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			slog.Error("health check failed", "check", name, "error", err)
			body.Checks[name] = statusDegraded
			healthy = false
			continue
		}
		body.Checks[name] = statusOK
	}
	if !healthy {
		body.Status = statusDegraded
	}
	return body, healthy
}
