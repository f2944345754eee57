// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

// storeIfCurrent writes the value only while the namespace version still matches the one
// read before the database read. KEYS[1]=version key, KEYS[2]=cache key, ARGV=version, value, ttl(ms).
var storeIfCurrent = redis.NewScript(`
local v = redis.call('GET', KEYS[1]) or '0'
if v ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// CachingPostRepository decorates a PostRepository with Redis caching of list pages and single posts.
// Every write bumps the namespace version, then invalidates the cached pages and, for updates and
// deletes, the affected post. A read that started before a write never repopulates the cache.
type CachingPostRepository struct {
	inner     usecase.PostRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.PostRepository = (*CachingPostRepository)(nil)

// cachedPage is the cached form of one List result.
type cachedPage struct {
	Posts []entity.Post `json:"posts"`
	Total int64         `json:"total"`
}

// NewCachingPostRepository decorates a PostRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "posts".
// A nil rdb disables caching.
func NewCachingPostRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PostRepository, namespace string) *CachingPostRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "posts"
	}
	return &CachingPostRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// List returns a cached page when present, otherwise reads through to the inner repository.
func (c *CachingPostRepository) List(ctx context.Context, page, limit int) ([]entity.Post, int64, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, page, limit)
	}

	key := c.listKey(page, limit)

	var cached cachedPage
	if c.load(ctx, key, &cached) {
		return cached.Posts, cached.Total, nil
	}

	version, ok := c.version(ctx)
	posts, total, err := c.inner.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if ok {
		c.store(ctx, key, version, cachedPage{Posts: posts, Total: total})
	}
	return posts, total, nil
}

// FindByID returns a cached post when present. Misses are not cached.
func (c *CachingPostRepository) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.postKey(id)

	var cached entity.Post
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	version, ok := c.version(ctx)
	post, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ok {
		c.store(ctx, key, version, post)
	}
	return post, nil
}

// Create inserts the post and drops every cached page.
func (c *CachingPostRepository) Create(ctx context.Context, post *entity.Post) error {
	if err := c.inner.Create(ctx, post); err != nil {
		return err
	}
	c.invalidate(ctx, 0)
	return nil
}

// Update writes the post and drops it and every cached page.
func (c *CachingPostRepository) Update(ctx context.Context, post *entity.Post) error {
	if err := c.inner.Update(ctx, post); err != nil {
		return err
	}
	c.invalidate(ctx, post.ID)
	return nil
}

// Delete removes the post and drops it and every cached page.
func (c *CachingPostRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// load reads key into dst. Corrupted entries are deleted.
func (c *CachingPostRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// version returns the current namespace version. ok is false when Redis could not be read,
// in which case the caller must not store its result.
func (c *CachingPostRepository) version(ctx context.Context) (string, bool) {
	v, err := c.rdb.Get(ctx, c.versionKey()).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		return "", false
	}
	return v, true
}

// store writes v under key unless a write bumped the version since it was read (best effort).
func (c *CachingPostRepository) store(ctx context.Context, key, version string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	keys := []string{c.versionKey(), key}
	if err := storeIfCurrent.Run(ctx, c.rdb, keys, version, b, c.ttl.Milliseconds()).Err(); err != nil {
		slog.Warn("failed to store cached posts", "key", key, "error", err)
	}
}

// invalidate bumps the version and deletes the cached post (when id is non-zero) and all cached pages.
// Failures are logged; entries left behind expire with the TTL.
func (c *CachingPostRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	// 先にバージョンを進め、読み込み中のリクエストによる書き戻しを防ぐ
	if err := c.rdb.Incr(ctx, c.versionKey()).Err(); err != nil {
		slog.Warn("failed to bump post cache version", "error", err)
	}
	if id != 0 {
		if err := c.rdb.Del(ctx, c.postKey(id)).Err(); err != nil {
			slog.Warn("failed to invalidate cached post", "post_id", id, "error", err)
		}
	}
	if err := deleteByPattern(ctx, c.rdb, c.listPrefix()+"*"); err != nil {
		slog.Warn("failed to invalidate cached post pages", "error", err)
	}
}

func (c *CachingPostRepository) listPrefix() string {
	return fmt.Sprintf("%s:list:", safe(c.namespace))
}

func (c *CachingPostRepository) listKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", c.listPrefix(), page, limit)
}

func (c *CachingPostRepository) versionKey() string {
	return safe(c.namespace) + ":version"
}

func (c *CachingPostRepository) postKey(id uint) string {
	return fmt.Sprintf("%s:post:%d", safe(c.namespace), id)
}
