package locks

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *RedisLocker {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	l, err := NewRedisLocker(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRedisLockerExclusive(t *testing.T) {
	l := newTestLocker(t)
	ctx := context.Background()
	key := "test-exclusive-" + time.Now().Format("150405.000")

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, key)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInside)
}

func TestRedisLockerContextCancel(t *testing.T) {
	l := newTestLocker(t)
	key := "test-cancel-" + time.Now().Format("150405.000")

	unlock, err := l.Lock(context.Background(), key)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, key)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "err = %v", err)
}

func TestRedisLockerUnlockKeepsForeignToken(t *testing.T) {
	l := newTestLocker(t)
	ctx := context.Background()
	key := "test-foreign-" + time.Now().Format("150405.000")

	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err)

	// simulate TTL expiry and another holder taking over
	require.NoError(t, l.Client.Set(ctx, keyPrefix+key, "other", time.Minute).Err())
	unlock()

	v, err := l.Client.Get(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Equal(t, "other", v)
	l.Client.Del(ctx, keyPrefix+key)
}
