// Package adapters はblogフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/mdobak/go-xerrors"
	"gorm.io/gorm"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

// postRow is the flat result of the posts/users join.
type postRow struct {
	ID          uint
	Title       string
	Content     string
	AuthorID    uint
	AuthorEmail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r postRow) toEntity() entity.Post {
	return entity.Post{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		AuthorID:  r.AuthorID,
		Author:    entity.Author{ID: r.AuthorID, Email: r.AuthorEmail},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const postColumns = "posts.id, posts.title, posts.content, posts.author_id, users.email AS author_email, posts.created_at, posts.updated_at"

// postRepository はPostRepositoryインターフェースのGORM実装です。
type postRepository struct {
	db *gorm.DB
}

var _ usecase.PostRepository = (*postRepository)(nil)

// NewPostRepository は指定されたgorm.DB接続でpostRepositoryの新しいインスタンスを生成します。
func NewPostRepository(db *gorm.DB) *postRepository {
	return &postRepository{db: db}
}

func (r *postRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Select(postColumns).
		Joins("LEFT JOIN users ON users.id = posts.author_id")
}

// List は作成日時の降順（同時刻はIDの降順）で1ページ分を返します。
func (r *postRepository) List(ctx context.Context, page, limit int) ([]entity.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Post{}).Count(&total).Error; err != nil {
		return nil, 0, xerrors.New(err)
	}
	// オフセットがオーバーフローするページは常に末尾より後ろ
	if limit < 1 || page-1 > math.MaxInt/limit {
		return []entity.Post{}, total, nil
	}

	var rows []postRow
	err := r.withAuthor(ctx).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, xerrors.New(err)
	}

	posts := make([]entity.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toEntity())
	}
	return posts, total, nil
}

// FindByID はIDで投稿を取得します。存在しない場合はusecase.ErrPostNotFoundを返します。
func (r *postRepository) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	var rows []postRow
	if err := r.withAuthor(ctx).Where("posts.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, xerrors.New(err)
	}
	if len(rows) == 0 {
		return nil, usecase.ErrPostNotFound
	}
	post := rows[0].toEntity()
	return &post, nil
}

// Create は投稿を追加し、IDと日時を設定します。
func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return errors.New("post is nil")
	}
	return xerrors.New(r.db.WithContext(ctx).Create(post).Error)
}

// Update はタイトル・本文・更新日時のみを書き換えます。
func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return errors.New("post is nil")
	}
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":      post.Title,
			"content":    post.Content,
			"updated_at": now,
		})
	if res.Error != nil {
		return xerrors.New(res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	post.UpdatedAt = now
	return nil
}

// Delete はIDで投稿を削除します。
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Post{}, id)
	if res.Error != nil {
		return xerrors.New(res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}
