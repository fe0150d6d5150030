package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces identity locks in Redis
const KeyPrefix = "wheelspin:lock:identity:"

const pollInterval = 50 * time.Millisecond

// ErrNotAcquired is returned when the lock could not be taken before ctx ended
var ErrNotAcquired = errors.New("identity lock not acquired")

// releaseScript deletes the key only if it still holds our value
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// ReleaseFailureHook is called when a release did not delete the key
type ReleaseFailureHook func(key string, err error)

// RedisLocker serializes work per key across processes with SET NX + TTL
type RedisLocker struct {
	client    *goredis.Client
	ttl       time.Duration
	onRelease ReleaseFailureHook
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder blocks a key.
func NewRedisLocker(client *goredis.Client, ttl time.Duration, onRelease ReleaseFailureHook) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, onRelease: onRelease}
}

// Lock blocks until key is held or ctx is done. The returned func releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := KeyPrefix + key
	value := uuid.NewString()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, value, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrNotAcquired
			}
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-ticker.C:
		}
	}

	return func() {
		// Release even if the request context was cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		res, err := releaseScript.Run(rctx, l.client, []string{redisKey}, value).Int64()
		if l.onRelease == nil {
			return
		}
		if err != nil {
			l.onRelease(redisKey, err)
		} else if res == 0 {
			l.onRelease(redisKey, errors.New("lock expired or taken over"))
		}
	}, nil
}

// NewClient creates a go-redis client
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
