// Package revocation keeps a Redis-backed denylist of token ids (jti) that were
// revoked before their natural expiry, e.g. on logout.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDenylist stores one key per revoked token. Keys expire together with the
// token, so the list never outgrows the set of still-valid tokens.
type RedisDenylist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisDenylist creates a new RedisDenylist. If prefix is empty, it uses "revoked".
func NewRedisDenylist(client *redis.Client, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RedisDenylist{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// key returns the Redis key for a token id.
func (r *RedisDenylist) key(tokenID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, tokenID)
}

// Revoke denylists tokenID until expiresAt. Tokens that are already expired are ignored.
func (r *RedisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return fmt.Errorf("revoke: empty token id")
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the denylist.
func (r *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
