package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles OTP issuance per user and purpose: a short cooldown
// between consecutive requests, a cap within a rolling window, and an
// extended block once the cap is hit.
type Limiter struct {
	rdb         *redis.Client
	window      time.Duration
	maxInWindow int
	cooldown    time.Duration
}

func NewLimiter(rdb *redis.Client, window time.Duration, max int, cooldown time.Duration) *Limiter {
	return &Limiter{rdb: rdb, window: window, maxInWindow: max, cooldown: cooldown}
}

func (l *Limiter) CanRequest(ctx context.Context, userID int64, purpose string) error {
	blockKey := fmt.Sprintf("otp:block:%d:%s", userID, purpose)
	lastKey := fmt.Sprintf("otp:last:%d:%s", userID, purpose)
	countKey := fmt.Sprintf("otp:count:%d:%s", userID, purpose)

	if ttl, _ := l.rdb.TTL(ctx, blockKey).Result(); ttl > 0 {
		return fmt.Errorf("too many OTP requests; please try again after %d seconds", int(ttl.Seconds()))
	}

	if ttl, _ := l.rdb.TTL(ctx, lastKey).Result(); ttl > 0 {
		return fmt.Errorf("please wait %d seconds before requesting another OTP", int(ttl.Seconds()))
	}

	cnt, err := l.rdb.Incr(ctx, countKey).Result()
	if err != nil {
		return err
	}
	if cnt == 1 {
		_ = l.rdb.Expire(ctx, countKey, l.window).Err()
	}

	if int(cnt) > l.maxInWindow {
		_ = l.rdb.Set(ctx, blockKey, "1", l.window*3).Err()
		return fmt.Errorf("too many OTP requests; please try again after %d seconds", int((l.window * 3).Seconds()))
	}

	_ = l.rdb.Set(ctx, lastKey, "1", l.cooldown).Err()

	return nil
}
