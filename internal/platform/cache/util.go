package cache

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 200

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// deleteByPattern deletes all keys matching pattern using SCAN.
func deleteByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}
