// Package ratelimiter は呼び出し元ごとの固定ウィンドウ方式レートリミッターを提供します。
package ratelimiter

import (
	"sync"
	"time"
)

// sweepThreshold を超えるキーを保持している場合、期限切れのウィンドウを掃除します。
const sweepThreshold = 1024

// Limiter はキー（クライアントIPなど）ごとに操作の頻度を制限するインターフェースです。
type Limiter interface {
	// Allow は操作を許可するかを返します。拒否時は次のウィンドウまでの待ち時間も返します。
	Allow(key string) (bool, time.Duration)
}

// RateLimiter は、キーごとに interval あたり limit 回まで操作を許可します。
// 複数のゴルーチンから同時に利用できます。
type RateLimiter struct {
	mu       sync.Mutex
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	windows  map[string]*window
	now      func() time.Time
}

type window struct {
	count int
	start time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が0以下の場合、すべての操作を許可します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		windows:  make(map[string]*window),
		now:      time.Now,
	}
}

// Allow はキーのカウントを進め、上限を超えていれば false と残り時間を返します。
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if rl.limit <= 0 {
		return true, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.start) >= rl.interval {
		if len(rl.windows) >= sweepThreshold {
			rl.sweep(now)
		}
		rl.windows[key] = &window{count: 1, start: now}
		return true, 0
	}

	w.count++
	if w.count > rl.limit {
		return false, rl.interval - now.Sub(w.start)
	}
	return true, 0
}

// sweep は期限切れのウィンドウを削除します。呼び出し側でロックを保持していること。
func (rl *RateLimiter) sweep(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.start) >= rl.interval {
			delete(rl.windows, k)
		}
	}
}
