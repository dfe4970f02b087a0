package locker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"fitshop_backend/internal/logger"
)

const (
	defaultLeaseTTL   = 10 * time.Second
	defaultRetryDelay = 25 * time.Millisecond
	keyPrefix         = "fitshop:lock:"
)

// releaseScript deletes the key only if it still carries our token, so an
// expired lease taken over by another holder is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds a lease per key using SET NX PX with a random token.
type RedisLocker struct {
	client goredis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client goredis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &RedisLocker{client: client, ttl: ttl, retry: defaultRetryDelay}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		}

		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
			}
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return l.unlocker(redisKey, token), nil
		}
		timer.Reset(l.retry)
	}
}

func (l *RedisLocker) unlocker(redisKey, token string) Unlock {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			logger.Warn("failed to release redis lock", "key", redisKey, "error", err)
		}
	}
}
