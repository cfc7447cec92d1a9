package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	counts map[string]int64
	ttls   map[string]time.Duration
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts: map[string]int64{},
		ttls:   map[string]time.Duration{},
		values: map[string]string{},
	}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, exists := f.values[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestFixedWindowAllowDeniesOverLimit(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}

	for i := 0; i < 2; i++ {
		allowed, _, err := client.FixedWindowAllow(context.Background(), "login:ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, count, err := client.FixedWindowAllow(context.Background(), "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(3), count)
}

func TestIncrWithTTLSetsExpiryOnFirstIncrement(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}

	count, err := client.IncrWithTTL(context.Background(), "sweep", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, store.ttls["sweep"])

	delete(store.ttls, "sweep")
	count, err = client.IncrWithTTL(context.Background(), "sweep", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NotContains(t, store.ttls, "sweep")
}

func TestKeyNamespacing(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "sf:rate_limit:login:ip:1.2.3.4", client.RateLimitKey("login:ip:1.2.3.4"))
	assert.Equal(t, "sf:lock:cron-worker:prod", client.LockKey("cron-worker:prod"))
}

func TestSetNXSecondWriterLosesRace(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}

	ok, err := client.SetNX(context.Background(), "owner", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(context.Background(), "owner", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := client.Get(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}
