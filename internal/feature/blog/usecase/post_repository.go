package usecase

import (
	"context"

	"blog_backend/internal/feature/blog/domain/entity"
)

// PostRepository persists posts. Read methods populate Post.Author.
type PostRepository interface {
	// List returns one page of posts, newest first, and the total number of posts.
	List(ctx context.Context, page, limit int) ([]entity.Post, int64, error)
	// FindByID returns ErrPostNotFound when the post does not exist.
	FindByID(ctx context.Context, id uint) (*entity.Post, error)
	Create(ctx context.Context, post *entity.Post) error
	// Update writes title, content and updated_at. Returns ErrPostNotFound when the row is gone.
	Update(ctx context.Context, post *entity.Post) error
	// Delete returns ErrPostNotFound when the post does not exist.
	Delete(ctx context.Context, id uint) error
}
