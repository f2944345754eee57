// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/http/response"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/validation"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, email, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	Me(ctx context.Context, userID uint) (*entity.User, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 入力不正時は400（違反フィールドの一覧付き）
// - メール重複時は409
// - 成功時はトークンとユーザー情報付きで201
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
			response.Validation(c, verr)
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			response.Error(c, http.StatusConflict, "email already registered")
		case errors.Is(err, usecase.ErrUnavailable):
			response.Unavailable(c, err)
		default:
			response.Internal(c, err)
		}
		return
	}

	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.AuthResponse{Token: token, User: toUserResponse(user)})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// メールアドレス・パスワードのどちらが誤っていても同じ401を返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, usecase.ErrUnavailable):
			response.Unavailable(c, err)
		default:
			response.Internal(c, err)
		}
		return
	}

	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.AuthResponse{Token: token, User: toUserResponse(user)})
}

// Me は認証済みユーザー自身のプロフィールを返します。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			// トークンは有効だがユーザーが存在しない
			slog.Warn("token subject no longer exists", "user_id", userID, "remote_addr", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, usecase.ErrUnavailable):
			response.Unavailable(c, err)
		default:
			response.Internal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout は提示されたトークンを失効させます。
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := jwtmw.ClaimsFrom(c)
	if !ok || claims.ExpiresAt == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, usecase.ErrUnavailable) {
			response.Unavailable(c, err)
			return
		}
		response.Internal(c, err)
		return
	}

	slog.Info("user logged out", "user_id", claims.Subject, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Logged out"})
}

func toUserResponse(u *entity.User) api.User {
	return api.User{
		Id:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
