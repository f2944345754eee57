// Package handler はblogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/transport/http/dto"
	"blog_backend/internal/feature/blog/usecase"
	"blog_backend/internal/platform/http/response"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/validation"
)

// PostUsecase はブログ投稿操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PostUsecase interface {
	List(ctx context.Context, page, limit int) (*usecase.PostPage, error)
	Get(ctx context.Context, id uint) (*entity.Post, error)
	Create(ctx context.Context, authorID uint, in usecase.PostInput) (*entity.Post, error)
	Update(ctx context.Context, userID, id uint, in usecase.PostInput) (*entity.Post, error)
	Delete(ctx context.Context, userID, id uint) error
}

// PostHandler はブログ投稿のHTTPリクエストを処理します。
type PostHandler struct {
	uc PostUsecase
}

// NewPostHandler は指定されたusecaseでPostHandlerの新しいインスタンスを生成します。
func NewPostHandler(uc PostUsecase) *PostHandler {
	return &PostHandler{uc: uc}
}

// List は投稿一覧を新しい順に返します。
//
// エンドポイント例:
// GET /api/blogs?page=1&limit=10
func (h *PostHandler) List(c *gin.Context) {
	params := bindListParams(c)

	page, limit := 0, 0
	if params.Page != nil {
		page = *params.Page
	}
	if params.Limit != nil {
		limit = *params.Limit
	}

	out, err := h.uc.List(c.Request.Context(), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	blogs := make([]api.Blog, 0, len(out.Posts))
	for i := range out.Posts {
		blogs = append(blogs, toBlogResponse(&out.Posts[i]))
	}
	c.JSON(http.StatusOK, api.BlogList{
		Blogs:       blogs,
		CurrentPage: out.Page,
		TotalPages:  out.TotalPages,
		TotalBlogs:  out.Total,
	})
}

// Get は1件の投稿を返します。
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "Blog not found")
		return
	}

	post, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toBlogResponse(post))
}

// Create は認証済みユーザーを著者として投稿を作成します。
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req dto.PostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create blog validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return
	}

	post, err := h.uc.Create(c.Request.Context(), userID, usecase.PostInput{Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("blog created", "post_id", post.ID, "user_id", userID)
	c.JSON(http.StatusCreated, toBlogResponse(post))
}

// Update は著者本人のみ投稿を更新できます。
// 存在確認と著者確認をボディの検証より先に行います。
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "Blog not found")
		return
	}

	// ボディの形式不正は400、必須項目の欠落はusecaseで404/403の後に判定する
	var req api.BlogInput
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update blog body rejected", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return
	}

	post, err := h.uc.Update(c.Request.Context(), userID, id, usecase.PostInput{Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("blog updated", "post_id", post.ID, "user_id", userID)
	c.JSON(http.StatusOK, toBlogResponse(post))
}

// Delete は著者本人のみ投稿を削除できます。
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "Blog not found")
		return
	}

	if err := h.uc.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("blog deleted", "post_id", id, "user_id", userID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Blog deleted"})
}

// fail maps usecase errors to HTTP responses.
func (h *PostHandler) fail(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.Validation(c, verr)
	case errors.Is(err, usecase.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, "Blog not found")
	case errors.Is(err, usecase.ErrForbidden):
		slog.Warn("blog modification forbidden", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
		response.Error(c, http.StatusForbidden, "You can only modify your own blogs")
	case errors.Is(err, usecase.ErrUnavailable):
		response.Unavailable(c, err)
	default:
		response.Internal(c, err)
	}
}

// bindListParams parses page and limit. Values that are absent or not integers are left nil
// so that the usecase applies its defaults.
func bindListParams(c *gin.Context) api.ListBlogsParams {
	var params api.ListBlogsParams
	query := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		params.Page = nil
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		params.Limit = nil
	}
	return params
}

// parseID parses the :id path parameter as a positive integer.
func parseID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func toBlogResponse(p *entity.Post) api.Blog {
	return api.Blog{
		Id:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Author: api.Author{
			Id:    p.Author.ID,
			Email: p.Author.Email,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
