package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/shared/timeout"
	"blog_backend/internal/shared/validation"
)

const (
	// DefaultPage は page 未指定・不正時のページ番号です。
	DefaultPage = 1
	// DefaultLimit は limit 未指定・不正時の1ページあたり件数です。
	DefaultLimit = 10
	// MaxLimit は1ページあたりの最大件数です。
	MaxLimit = 100
	// MaxPage は (page-1)*limit がintに収まるページ番号の上限です。
	MaxPage = math.MaxInt / MaxLimit
	// MaxTitleLength はタイトルの最大文字数（バイト数ではなくrune数）です。
	MaxTitleLength = 255
)

// PostInput は作成・更新時にクライアントから受け取る値です。
type PostInput struct {
	Title   string
	Content string
}

// PostPage は一覧取得の結果です。
type PostPage struct {
	Posts      []entity.Post
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// postUsecase はブログ投稿のユースケースを実装します。
type postUsecase struct {
	posts     PostRepository
	opTimeout time.Duration
}

// NewPostUsecase はpostUsecaseの新しいインスタンスを生成します。
// opTimeout は永続化呼び出し1回あたりの上限時間です（0以下で無制限）。
func NewPostUsecase(posts PostRepository, opTimeout time.Duration) *postUsecase {
	return &postUsecase{posts: posts, opTimeout: opTimeout}
}

// NormalizePagination は page/limit の既定値と上限を適用します。
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > MaxPage {
		page = MaxPage
	}
	return page, limit
}

// List は新しい順に1ページ分の投稿を返します。
func (u *postUsecase) List(ctx context.Context, page, limit int) (*PostPage, error) {
	page, limit = NormalizePagination(page, limit)

	type result struct {
		posts []entity.Post
		total int64
	}
	res, err := timeout.Call(ctx, u.opTimeout, func(ctx context.Context) (result, error) {
		posts, total, err := u.posts.List(ctx, page, limit)
		return result{posts: posts, total: total}, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	posts := res.posts
	if posts == nil {
		posts = []entity.Post{}
	}

	return &PostPage{
		Posts:      posts,
		Page:       page,
		Limit:      limit,
		Total:      res.total,
		TotalPages: totalPages(res.total, limit),
	}, nil
}

// Get はIDで投稿を取得します。
func (u *postUsecase) Get(ctx context.Context, id uint) (*entity.Post, error) {
	if id == 0 {
		return nil, ErrPostNotFound
	}
	return timeout.Call(ctx, u.opTimeout, func(ctx context.Context) (*entity.Post, error) {
		return u.posts.FindByID(ctx, id)
	})
}

// Create は認証済みユーザーを著者として投稿を作成します。
func (u *postUsecase) Create(ctx context.Context, authorID uint, in PostInput) (*entity.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post := &entity.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: authorID,
	}
	if err := timeout.Do(ctx, u.opTimeout, func(ctx context.Context) error {
		return u.posts.Create(ctx, post)
	}); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	// 著者のメールアドレスを含めて読み直す
	return u.Get(ctx, post.ID)
}

// Update は著者本人の場合のみタイトルと本文を更新します。
// 判定順: 存在しない(404) → 著者でない(403) → 入力不正(400)。
func (u *postUsecase) Update(ctx context.Context, userID, id uint, in PostInput) (*entity.Post, error) {
	post, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(userID) {
		return nil, ErrForbidden
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// 読み取りから書き込みまでの間に競合した場合は後勝ち
	post.Title = in.Title
	post.Content = in.Content
	if err := timeout.Do(ctx, u.opTimeout, func(ctx context.Context) error {
		return u.posts.Update(ctx, post)
	}); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	return post, nil
}

// Delete は著者本人の場合のみ投稿を削除します。
func (u *postUsecase) Delete(ctx context.Context, userID, id uint) error {
	post, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	if !post.IsOwnedBy(userID) {
		return ErrForbidden
	}

	if err := timeout.Do(ctx, u.opTimeout, func(ctx context.Context) error {
		return u.posts.Delete(ctx, id)
	}); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

func validateInput(in PostInput) error {
	v := validation.New()
	v.CheckNotBlank(in.Title, "title", "is required")
	v.CheckNotBlank(in.Content, "content", "is required")
	v.Check(len([]rune(in.Title)) <= MaxTitleLength, "title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	return v.Err()
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
