// Package middleware provides the gin middlewares installed on every route.
package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdobak/go-xerrors"

	"blog_backend/internal/platform/http/response"
	"blog_backend/internal/shared/ratelimiter"
)

// RequestLogger logs one line per request after it has been served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"remote_addr", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			slog.Error("request served", attrs...)
		case status >= http.StatusBadRequest:
			slog.Warn("request served", attrs...)
		default:
			slog.Info("request served", attrs...)
		}
	}
}

// Recovery turns a panic into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		response.Internal(c, xerrors.New(fmt.Sprintf("panic: %v", recovered)))
	})
}

// RateLimit rejects requests with 429 once the client IP exceeds its request allowance.
func RateLimit(limiter ratelimiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := limiter.Allow(c.ClientIP())
		if !ok {
			slog.Warn("rate limit exceeded", "path", c.FullPath(), "remote_addr", c.ClientIP())
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			response.Error(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}
