// Package ratelimiter は固定ウィンドウ方式の呼び出し頻度制限を提供します。
package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Limiter は操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter は interval ごとに limit 回まで操作を許可します。
// 複数のゴルーチンから安全に使用できます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // interval あたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Wait はレートリミットの上限に達していれば次のウィンドウまで待機します。
// 待機中に ctx がキャンセルされた場合は ctx のエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		sleep := rl.reserve()
		if sleep <= 0 {
			return nil
		}
		log.Warn().Int("limit", rl.limit).Dur("sleep", sleep).Msg("rate limit hit, waiting")

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve は枠があれば消費して0を、なければ次のリセットまでの時間を返します。
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	if rl.limit <= 0 || rl.count < rl.limit {
		rl.count++
		return 0
	}
	return rl.interval - now.Sub(rl.lastReset)
}
