package adapters

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database with the production schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.Migrate(context.Background(), gdb, config.DriverSQLite), "failed to migrate")

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func insertUser(t *testing.T, gdb *gorm.DB, email string) uint {
	t.Helper()

	now := time.Now()
	require.NoError(t, gdb.Exec(
		"INSERT INTO users (email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)",
		email, "hash", now, now,
	).Error)

	var id uint
	require.NoError(t, gdb.Raw("SELECT id FROM users WHERE email = ?", email).Scan(&id).Error)
	return id
}

func TestPostRepository_CreateAndFind(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	authorID := insertUser(t, gdb, "author@example.com")

	post := &entity.Post{Title: "Hello", Content: "World", AuthorID: authorID}
	require.NoError(t, repo.Create(ctx, post))
	assert.NotZero(t, post.ID, "ID is not set")
	assert.False(t, post.CreatedAt.IsZero(), "CreatedAt is not set")

	found, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", found.Title)
	assert.Equal(t, "World", found.Content)
	assert.Equal(t, authorID, found.AuthorID)
	assert.Equal(t, entity.Author{ID: authorID, Email: "author@example.com"}, found.Author)
}

func TestPostRepository_FindByID_NotFound(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, usecase.ErrPostNotFound)
}

func TestPostRepository_Create_Nil(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))

	assert.Error(t, repo.Create(context.Background(), nil))
}

func TestPostRepository_List(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	authorID := insertUser(t, gdb, "author@example.com")

	for i := 1; i <= 12; i++ {
		require.NoError(t, repo.Create(ctx, &entity.Post{
			Title:    fmt.Sprintf("post %d", i),
			Content:  "body",
			AuthorID: authorID,
		}))
	}

	t.Run("first page is newest first", func(t *testing.T) {
		posts, total, err := repo.List(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		require.Len(t, posts, 10)
		assert.Equal(t, "post 12", posts[0].Title)
		assert.Equal(t, "post 3", posts[9].Title)
		for i := 1; i < len(posts); i++ {
			assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt), "posts must be ordered newest first")
		}
		assert.Equal(t, "author@example.com", posts[0].Author.Email)
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		posts, total, err := repo.List(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		require.Len(t, posts, 2)
		assert.Equal(t, "post 2", posts[0].Title)
		assert.Equal(t, "post 1", posts[1].Title)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		posts, total, err := repo.List(ctx, 5, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		assert.Empty(t, posts)
	})

	t.Run("page whose offset overflows is empty", func(t *testing.T) {
		posts, total, err := repo.List(ctx, math.MaxInt/10+2, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		assert.Empty(t, posts)
	})

	t.Run("largest accepted page is empty", func(t *testing.T) {
		posts, total, err := repo.List(ctx, usecase.MaxPage, usecase.MaxLimit)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		assert.Empty(t, posts)
	})
}

func TestPostRepository_List_SameTimestampOrdersByID(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	authorID := insertUser(t, gdb, "author@example.com")

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.Post{
			Title:     fmt.Sprintf("post %d", i),
			Content:   "body",
			AuthorID:  authorID,
			CreatedAt: ts,
			UpdatedAt: ts,
		}))
	}

	posts, _, err := repo.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "post 3", posts[0].Title)
	assert.Equal(t, "post 1", posts[2].Title)
}

func TestPostRepository_Update(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	authorID := insertUser(t, gdb, "author@example.com")

	post := &entity.Post{Title: "old", Content: "old body", AuthorID: authorID}
	require.NoError(t, repo.Create(ctx, post))
	createdAt := post.CreatedAt

	post.Title = "new"
	post.Content = "new body"
	require.NoError(t, repo.Update(ctx, post))

	found, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", found.Title)
	assert.Equal(t, "new body", found.Content)
	assert.Equal(t, authorID, found.AuthorID)
	assert.True(t, found.CreatedAt.Equal(createdAt), "CreatedAt must not change")
	assert.False(t, found.UpdatedAt.Before(createdAt))

	t.Run("missing row", func(t *testing.T) {
		err := repo.Update(ctx, &entity.Post{ID: 999, Title: "x", Content: "y"})
		assert.ErrorIs(t, err, usecase.ErrPostNotFound)
	})
}

func TestPostRepository_Delete(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	authorID := insertUser(t, gdb, "author@example.com")

	post := &entity.Post{Title: "t", Content: "c", AuthorID: authorID}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, usecase.ErrPostNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), usecase.ErrPostNotFound)
}

func TestPostRepository_DatabaseErrorsCarryStack(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, _, err = repo.List(ctx, 1, 10)
	require.Error(t, err)
	assert.NotEmpty(t, xerrors.StackTrace(err))

	_, err = repo.FindByID(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrPostNotFound)
	assert.NotEmpty(t, xerrors.StackTrace(err))

	err = repo.Delete(ctx, 1)
	require.Error(t, err)
	assert.NotEmpty(t, xerrors.StackTrace(err))
}
