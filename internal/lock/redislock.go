package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBusy is returned when another holder kept the key for the whole MaxWait.
var ErrBusy = errors.New("lock: resource busy")

// unlockScript deletes the key only while it still holds our token, so a
// holder whose TTL lapsed cannot release a successor's lock.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serialises work on a key across API replicas with SET NX PX.
type Locker struct {
	R *redis.Client
	// RetryBackoff is the first wait between attempts; it doubles up to
	// maxRetryBackoff.
	RetryBackoff time.Duration
	// MaxWait bounds how long WithLock polls. Zero waits until ctx is done.
	MaxWait time.Duration
}

const (
	defaultLockTTL  = 30 * time.Second
	maxRetryBackoff = 250 * time.Millisecond
)

// WithLock runs fn while holding key. The lock expires after ttl if the
// process dies, and is released as soon as fn returns.
func (l Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.R == nil {
		return errors.New("lock: redis client not configured")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	token, err := l.acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer func() {
		_ = unlockScript.Run(context.WithoutCancel(ctx), l.R, []string{key}, token).Err()
	}()
	return fn(ctx)
}

func (l Locker) acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	waitCtx := ctx
	if l.MaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.MaxWait)
		defer cancel()
	}
	backoff := l.RetryBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}

	token := uuid.NewString()
	for {
		ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return "", fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return token, nil
		}
		timer := time.NewTimer(backoff)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: %s", ErrBusy, key)
		case <-timer.C:
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}
