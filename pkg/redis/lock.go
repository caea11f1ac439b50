package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock sets key to a fresh token for ttl if it is free. ok is false when
// another holder has it.
func TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = SetNX(ctx, key, token, ttl)
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Unlock releases key if token still owns it
func Unlock(ctx context.Context, key, token string) error {
	if client == nil {
		return ErrNotConfigured
	}
	return releaseScript.Run(ctx, client, []string{key}, token).Err()
}
