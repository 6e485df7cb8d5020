package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFixture struct {
	store   Store
	advance func(d time.Duration)
}

func newFixtures(t *testing.T) map[string]storeFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	memory := NewMemoryStore()
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	memory.now = func() time.Time { return current }

	return map[string]storeFixture{
		"redis": {
			store:   NewRedisClientFrom(client, "test"),
			advance: mr.FastForward,
		},
		"memory": {
			store:   memory,
			advance: func(d time.Duration) { current = current.Add(d) },
		},
	}
}

func TestStore_Revocation(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			fresh, err := fx.store.Revoke(ctx, "jti-1", time.Minute)
			require.NoError(t, err)
			assert.True(t, fresh)

			fresh, err = fx.store.Revoke(ctx, "jti-1", time.Minute)
			require.NoError(t, err)
			assert.False(t, fresh, "second revoke reports reuse")

			fx.advance(2 * time.Minute)

			fresh, err = fx.store.Revoke(ctx, "jti-1", time.Minute)
			require.NoError(t, err)
			assert.True(t, fresh, "revocation should expire with the token")

			_, err = fx.store.Revoke(ctx, "", time.Minute)
			assert.Error(t, err)
		})
	}
}

func TestStore_StateIsSingleUse(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, fx.store.SaveState(ctx, "state-1", time.Minute))
			assert.Error(t, fx.store.SaveState(ctx, "state-1", time.Minute))

			ok, err := fx.store.ConsumeState(ctx, "state-1")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = fx.store.ConsumeState(ctx, "state-1")
			require.NoError(t, err)
			assert.False(t, ok, "state must not be accepted twice")

			ok, err = fx.store.ConsumeState(ctx, "unknown")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_StateExpires(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, fx.store.SaveState(ctx, "state-2", time.Minute))
			fx.advance(2 * time.Minute)

			ok, err := fx.store.ConsumeState(ctx, "state-2")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_RateLimitWindow(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for want := int64(1); want <= 3; want++ {
				count, err := fx.store.IncrementRateLimit(ctx, "10.0.0.1", time.Minute)
				require.NoError(t, err)
				assert.Equal(t, want, count)
			}

			count, err := fx.store.IncrementRateLimit(ctx, "10.0.0.2", time.Minute)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count, "clients are counted separately")

			fx.advance(61 * time.Second)

			count, err = fx.store.IncrementRateLimit(ctx, "10.0.0.1", time.Minute)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count, "a new window starts after expiry")
		})
	}
}

func TestRedisClient_RateLimitKeyAlwaysExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisClientFrom(client, "test")
	ctx := context.Background()
	key := NewKeyBuilder("test").RateLimit("10.0.0.1")

	_, err := store.IncrementRateLimit(ctx, "10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(30 * time.Second)
	count, err := store.IncrementRateLimit(ctx, "10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Equal(t, 30*time.Second, mr.TTL(key), "later requests do not extend the window")

	// ключ, оставшийся без TTL, получает его при следующем запросе
	stale := NewKeyBuilder("test").RateLimit("10.0.0.9")
	require.NoError(t, mr.Set(stale, "5"))
	count, err = store.IncrementRateLimit(ctx, "10.0.0.9", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 6, count)
	assert.Equal(t, time.Minute, mr.TTL(stale))
}

func TestStore_HealthCheck(t *testing.T) {
	for name, fx := range newFixtures(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, fx.store.HealthCheck(context.Background()))
			assert.NotEmpty(t, fx.store.Driver())
		})
	}
}

func TestKeyBuilder(t *testing.T) {
	kb := NewKeyBuilder("shortlink")
	assert.Equal(t, "shortlink:revoked:abc", kb.Revoked("abc"))
	assert.Equal(t, "shortlink:state:xyz", kb.State("xyz"))
	assert.Equal(t, "shortlink:rate:127.0.0.1", kb.RateLimit("127.0.0.1"))

	plain := NewKeyBuilder("")
	assert.Equal(t, "rate:127.0.0.1", plain.RateLimit("127.0.0.1"))
}

func TestCacheError(t *testing.T) {
	err := NewCacheError("set", "k", ErrInvalidCacheKey)
	assert.ErrorIs(t, err, ErrInvalidCacheKey)
	assert.Equal(t, "cache set 'k': invalid cache key", err.Error())
}
