// Package locks provides a Redis-backed per-subject lock so several bot
// processes sharing one warn store still register warns one at a time.
package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "pancywarn/lock/"

	DefaultTTL   = 30 * time.Second
	DefaultRetry = 25 * time.Millisecond
)

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements warn.Locker with SET NX PX.
type RedisLocker struct {
	Client *redis.Client
	// TTL bounds how long a crashed holder can block a key.
	TTL time.Duration
	// Retry is the pause between acquisition attempts.
	Retry time.Duration
}

// NewRedisLocker connects to redisURL and checks the connection.
func NewRedisLocker(ctx context.Context, redisURL string) (*RedisLocker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisLocker{Client: rdb, TTL: DefaultTTL, Retry: DefaultRetry}, nil
}

// Lock retries until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	retry := l.Retry
	if retry <= 0 {
		retry = DefaultRetry
	}

	redisKey := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.Client.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
		case <-time.After(retry):
		}
	}

	return func() {
		// released with a fresh context: the caller's may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// on failure the TTL frees the key
		_ = unlockScript.Run(ctx, l.Client, []string{redisKey}, token).Err()
	}, nil
}

// Close closes the Redis client.
func (l *RedisLocker) Close() error {
	return l.Client.Close()
}
