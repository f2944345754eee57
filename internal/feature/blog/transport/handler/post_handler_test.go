package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var ts = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// mockPostUsecase はPostUsecaseのモック実装です。
type mockPostUsecase struct {
	listFn   func(ctx context.Context, page, limit int) (*usecase.PostPage, error)
	getFn    func(ctx context.Context, id uint) (*entity.Post, error)
	createFn func(ctx context.Context, authorID uint, in usecase.PostInput) (*entity.Post, error)
	updateFn func(ctx context.Context, userID, id uint, in usecase.PostInput) (*entity.Post, error)
	deleteFn func(ctx context.Context, userID, id uint) error
}

func (m *mockPostUsecase) List(ctx context.Context, page, limit int) (*usecase.PostPage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, limit)
	}
	return &usecase.PostPage{Posts: []entity.Post{}, Page: 1, Limit: 10}, nil
}

func (m *mockPostUsecase) Get(ctx context.Context, id uint) (*entity.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, usecase.ErrPostNotFound
}

func (m *mockPostUsecase) Create(ctx context.Context, authorID uint, in usecase.PostInput) (*entity.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, authorID, in)
	}
	return post(1, authorID, in.Title, in.Content), nil
}

func (m *mockPostUsecase) Update(ctx context.Context, userID, id uint, in usecase.PostInput) (*entity.Post, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, in)
	}
	return post(id, userID, in.Title, in.Content), nil
}

func (m *mockPostUsecase) Delete(ctx context.Context, userID, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func post(id, authorID uint, title, content string) *entity.Post {
	return &entity.Post{
		ID:        id,
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		Author:    entity.Author{ID: authorID, Email: "author@example.com"},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func setupRouter(uc PostUsecase, userID uint) *gin.Engine {
	h := NewPostHandler(uc)
	r := gin.New()
	r.GET("/api/blogs", h.List)
	r.GET("/api/blogs/:id", h.Get)

	auth := r.Group("/api/blogs")
	auth.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(jwtmw.ContextUserID, userID)
		}
		c.Next()
	})
	auth.POST("", h.Create)
	auth.PUT("/:id", h.Update)
	auth.DELETE("/:id", h.Delete)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return w, out
}

func TestPostHandler_List(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedPage  int
		expectedLimit int
	}{
		{"absent params", "", 0, 0},
		{"explicit params", "?page=2&limit=5", 2, 5},
		{"non-numeric params fall back", "?page=abc&limit=x", 0, 0},
		{"negative params passed through for normalization", "?page=-1&limit=0", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPage, gotLimit int
			uc := &mockPostUsecase{
				listFn: func(ctx context.Context, page, limit int) (*usecase.PostPage, error) {
					gotPage, gotLimit = page, limit
					return &usecase.PostPage{
						Posts:      []entity.Post{*post(2, 1, "b", "c"), *post(1, 1, "a", "c")},
						Page:       3,
						Limit:      10,
						Total:      22,
						TotalPages: 3,
					}, nil
				},
			}

			w, body := do(t, setupRouter(uc, 0), http.MethodGet, "/api/blogs"+tt.query, "")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectedPage, gotPage)
			assert.Equal(t, tt.expectedLimit, gotLimit)
			assert.EqualValues(t, 3, body["currentPage"])
			assert.EqualValues(t, 3, body["totalPages"])
			assert.EqualValues(t, 22, body["totalBlogs"])
			blogs := body["blogs"].([]any)
			require.Len(t, blogs, 2)
			first := blogs[0].(map[string]any)
			assert.EqualValues(t, 2, first["id"])
			assert.Equal(t, "author@example.com", first["author"].(map[string]any)["email"])
			assert.Equal(t, "2024-03-01T10:00:00Z", first["createdAt"])
		})
	}

	t.Run("empty list serializes as an array", func(t *testing.T) {
		w, body := do(t, setupRouter(&mockPostUsecase{}, 0), http.MethodGet, "/api/blogs", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{}, body["blogs"])
	})

	t.Run("store failure is a generic 500", func(t *testing.T) {
		uc := &mockPostUsecase{
			listFn: func(ctx context.Context, page, limit int) (*usecase.PostPage, error) {
				return nil, errors.New("connection reset by peer")
			},
		}

		w, body := do(t, setupRouter(uc, 0), http.MethodGet, "/api/blogs", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", body["error"])
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}

func TestPostHandler_Get(t *testing.T) {
	uc := &mockPostUsecase{
		getFn: func(ctx context.Context, id uint) (*entity.Post, error) {
			if id == 1 {
				return post(1, 4, "t", "c"), nil
			}
			return nil, usecase.ErrPostNotFound
		},
	}
	r := setupRouter(uc, 0)

	t.Run("found", func(t *testing.T) {
		w, body := do(t, r, http.MethodGet, "/api/blogs/1", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "t", body["title"])
		assert.EqualValues(t, 4, body["author"].(map[string]any)["id"])
	})

	for _, path := range []string{"/api/blogs/2", "/api/blogs/abc", "/api/blogs/0", "/api/blogs/-1"} {
		t.Run("not found "+path, func(t *testing.T) {
			w, body := do(t, r, http.MethodGet, path, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "Blog not found", body["error"])
		})
	}
}

func TestPostHandler_Create(t *testing.T) {
	t.Run("author comes from the token, not the body", func(t *testing.T) {
		var gotAuthor uint
		uc := &mockPostUsecase{
			createFn: func(ctx context.Context, authorID uint, in usecase.PostInput) (*entity.Post, error) {
				gotAuthor = authorID
				return post(10, authorID, in.Title, in.Content), nil
			},
		}

		w, body := do(t, setupRouter(uc, 7), http.MethodPost, "/api/blogs",
			`{"title":"Hello","content":"World","author":99}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, uint(7), gotAuthor)
		assert.EqualValues(t, 7, body["author"].(map[string]any)["id"])
		assert.Equal(t, "Hello", body["title"])
	})

	t.Run("missing fields list every violation", func(t *testing.T) {
		w, body := do(t, setupRouter(&mockPostUsecase{}, 7), http.MethodPost, "/api/blogs", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation failed", body["error"])
		details := body["details"].([]any)
		require.Len(t, details, 2)
		assert.Equal(t, "title", details[0].(map[string]any)["field"])
		assert.Equal(t, "content", details[1].(map[string]any)["field"])
	})

	t.Run("whitespace-only fields rejected by usecase", func(t *testing.T) {
		uc := &mockPostUsecase{
			createFn: func(ctx context.Context, authorID uint, in usecase.PostInput) (*entity.Post, error) {
				return nil, &validation.Error{Fields: []validation.FieldError{{Field: "title", Message: "is required"}}}
			},
		}

		w, body := do(t, setupRouter(uc, 7), http.MethodPost, "/api/blogs", `{"title":"  ","content":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation failed", body["error"])
	})

	t.Run("no identity", func(t *testing.T) {
		w, _ := do(t, setupRouter(&mockPostUsecase{}, 0), http.MethodPost, "/api/blogs", `{"title":"a","content":"b"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPostHandler_Update(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		updateErr      error
		expectedStatus int
		expectedError  string
	}{
		{"owner updates", "/api/blogs/3", `{"title":"n","content":"c"}`, nil, http.StatusOK, ""},
		{"not found", "/api/blogs/3", `{"title":"n","content":"c"}`, usecase.ErrPostNotFound, http.StatusNotFound, "Blog not found"},
		{"non-numeric id", "/api/blogs/x", `{"title":"n","content":"c"}`, nil, http.StatusNotFound, "Blog not found"},
		{"not owner", "/api/blogs/3", `{"title":"n","content":"c"}`, usecase.ErrForbidden, http.StatusForbidden, "You can only modify your own blogs"},
		{"not owner with empty body still forbidden", "/api/blogs/3", `{}`, usecase.ErrForbidden, http.StatusForbidden, "You can only modify your own blogs"},
		{"malformed body", "/api/blogs/3", `{"title":`, nil, http.StatusBadRequest, "invalid request body"},
		{
			"owner with blank fields", "/api/blogs/3", `{"title":"","content":""}`,
			&validation.Error{Fields: []validation.FieldError{{Field: "title", Message: "is required"}}},
			http.StatusBadRequest, "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPostUsecase{
				updateFn: func(ctx context.Context, userID, id uint, in usecase.PostInput) (*entity.Post, error) {
					if tt.updateErr != nil {
						return nil, tt.updateErr
					}
					return post(id, userID, in.Title, in.Content), nil
				},
			}

			w, body := do(t, setupRouter(uc, 7), http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				return
			}
			assert.Equal(t, "n", body["title"])
		})
	}
}

func TestPostHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		deleteErr      error
		expectedStatus int
		expectedKey    string
		expectedValue  string
	}{
		{"owner deletes", "/api/blogs/3", nil, http.StatusOK, "message", "Blog deleted"},
		{"not found", "/api/blogs/3", usecase.ErrPostNotFound, http.StatusNotFound, "error", "Blog not found"},
		{"not owner", "/api/blogs/3", usecase.ErrForbidden, http.StatusForbidden, "error", "You can only modify your own blogs"},
		{"store timeout", "/api/blogs/3", usecase.ErrUnavailable, http.StatusServiceUnavailable, "error", "service temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPostUsecase{
				deleteFn: func(ctx context.Context, userID, id uint) error {
					assert.Equal(t, uint(7), userID)
					assert.Equal(t, uint(3), id)
					return tt.deleteErr
				},
			}

			w, body := do(t, setupRouter(uc, 7), http.MethodDelete, tt.path, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedValue, body[tt.expectedKey])
		})
	}
}
