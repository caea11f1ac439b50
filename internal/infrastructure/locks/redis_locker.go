package locks

import (
	"context"
	"time"

	"go.uber.org/zap"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/pkg/logger"
	"visa-onboarding.backend/pkg/redis"
)

var (
	tryLock = redis.TryLock
	unlock  = redis.Unlock
)

// RedisLocker holds short-lived per-key locks in Redis
type RedisLocker struct {
	ttl time.Duration
}

func NewRedisLocker(ttl time.Duration) *RedisLocker {
	return &RedisLocker{ttl: ttl}
}

// Acquire takes key or returns ErrLocked when another holder has it.
// The returned release is safe to call once the lock has already expired.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token, ok, err := tryLock(ctx, key, l.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainerrors.ErrLocked
	}

	return func() {
		// release after the request context may have been cancelled
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := unlock(relCtx, key, token); err != nil {
			logger.Warn(ctx, "failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
