package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
)

const redisKeyPrefix = "webhook-relay:lock:"

var errLockHeld = errors.New("lock held by another owner")

// unlockScript deletes the key only if it still carries our token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a cross-process lock backed by SET NX PX. The TTL bounds
// how long a crashed holder can block a meeting.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker creates a Redis-backed locker
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Lock polls until the key is acquired, the TTL elapses or ctx is done
func (rl *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()

	acquire := func() error {
		ok, err := rl.client.SetNX(ctx, redisKey, token, rl.ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = rl.ttl

	if err := backoff.Retry(acquire, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrLockNotAcquired, key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := unlockScript.Run(context.Background(), rl.client, []string{redisKey}, token).Err(); err != nil {
				rl.logger.Warn("Failed to release meeting lock",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		})
	}, nil
}

// Ping checks connectivity
func (rl *RedisLocker) Ping(ctx context.Context) error {
	return rl.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (rl *RedisLocker) Close() error {
	return rl.client.Close()
}
