// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"blog_backend/internal/app/router"
	authadapters "blog_backend/internal/feature/auth/adapters"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authusecase "blog_backend/internal/feature/auth/usecase"
	blogadapters "blog_backend/internal/feature/blog/adapters"
	bloghandler "blog_backend/internal/feature/blog/transport/handler"
	blogusecase "blog_backend/internal/feature/blog/usecase"
	"blog_backend/internal/platform/cache"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/http/handler"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/revocation"
	"blog_backend/internal/shared/ratelimiter"
)

const revocationPrefix = "revoked"

// NewRevocationChecker returns the Redis denylist, or nil when Redis is not available.
// The nil is an untyped interface so that AuthRequired skips the check.
func NewRevocationChecker(rdb *redis.Client) jwtmw.RevocationChecker {
	if rdb == nil {
		return nil
	}
	return revocation.NewRedisDenylist(rdb, revocationPrefix)
}

// NewTokenRevoker returns the Redis denylist, or nil when Redis is not available.
func NewTokenRevoker(rdb *redis.Client) authusecase.TokenRevoker {
	if rdb == nil {
		return nil
	}
	return revocation.NewRedisDenylist(rdb, revocationPrefix)
}

// NewPostRepository returns the gorm post store wrapped in the Redis read cache.
// The cache bypasses itself when rdb is nil.
func NewPostRepository(db *gorm.DB, rdb *redis.Client, cfg config.CacheConfig) blogusecase.PostRepository {
	return cache.NewCachingPostRepository(rdb, cfg.TTL, blogadapters.NewPostRepository(db), "posts")
}

// NewHealthChecks returns the dependency checks reported by the health endpoint.
func NewHealthChecks(db *gorm.DB, rdb *redis.Client) map[string]handler.CheckFunc {
	checks := map[string]handler.CheckFunc{"database": handler.DBCheck(db)}
	if rdb != nil {
		checks["redis"] = handler.RedisCheck(rdb)
	}
	return checks
}

// NewApp builds every component and returns the HTTP handler tree. rdb may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	// Token
	tokens := jwtmw.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	guard := jwtmw.AuthRequired(tokens, NewRevocationChecker(rdb))

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	postRepo := NewPostRepository(db, rdb, cfg.Cache)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, tokens,
		authusecase.WithBcryptCost(cfg.Auth.BcryptCost),
		authusecase.WithOpTimeout(cfg.Database.OpTimeout),
		authusecase.WithRevoker(NewTokenRevoker(rdb)),
	)
	postUC := blogusecase.NewPostUsecase(postRepo, cfg.Database.OpTimeout)

	// Handler
	handlers := router.Handlers{
		Auth:   authhandler.NewAuthHandler(authUC),
		Posts:  bloghandler.NewPostHandler(postUC),
		Health: handler.NewHealthHandler(NewHealthChecks(db, rdb)),
	}

	limiter := ratelimiter.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateWindow)

	return router.NewRouter(cfg.Server.AllowedOrigins, guard, limiter, handlers)
}
