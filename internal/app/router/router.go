// Package router wires handlers and middlewares into the gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "blog_backend/internal/feature/auth/transport/handler"
	bloghandler "blog_backend/internal/feature/blog/transport/handler"
	"blog_backend/internal/platform/http/handler"
	"blog_backend/internal/platform/http/middleware"
	"blog_backend/internal/platform/http/response"
	"blog_backend/internal/shared/ratelimiter"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth   *authhandler.AuthHandler
	Posts  *bloghandler.PostHandler
	Health *handler.HealthHandler
}

// NewRouter builds the engine. guard protects identity-dependent routes and limiter throttles
// register/login per client IP.
func NewRouter(allowedOrigins []string, guard gin.HandlerFunc, limiter ratelimiter.Limiter, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger())
	// 許可オリジンが無い場合はCORSヘッダーを付けない（同一オリジンのみ）
	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 導通確認用
	for _, path := range []string{"/healthz", "/api/health"} {
		r.GET(path, h.Health.Health)
		r.HEAD(path, h.Health.Health)
	}

	api := r.Group("/api")

	// 認証
	authGroup := api.Group("/auth")
	{
		limited := authGroup.Group("", middleware.RateLimit(limiter))
		limited.POST("/register", h.Auth.Register)
		limited.POST("/login", h.Auth.Login)

		authGroup.GET("/me", guard, h.Auth.Me)
		authGroup.POST("/logout", guard, h.Auth.Logout)
	}

	// ブログ: 閲覧は認証不要、変更は認証必須
	blogs := api.Group("/blogs")
	{
		blogs.GET("", h.Posts.List)
		blogs.GET("/:id", h.Posts.Get)

		blogs.POST("", guard, h.Posts.Create)
		blogs.PUT("/:id", guard, h.Posts.Update)
		blogs.DELETE("/:id", guard, h.Posts.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "not found")
	})

	return r
}
