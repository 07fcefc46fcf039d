package cache

import (
	"context"
	"testing"
	"time"

	"grocerytracker/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "stores", []byte(`[{"slug":"coop"}]`), time.Minute))

		val, ok, err := c.Get(ctx, "stores")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `[{"slug":"coop"}]`, string(val))
		assert.True(t, s.Exists(keyPrefix+"stores"))
	})

	t.Run("Miss", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "summary", []byte("{}"), time.Second))
		s.FastForward(2 * time.Second)

		_, ok, err := c.Get(ctx, "summary")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DeletePrefix", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "prices:30", []byte("a"), time.Minute))
		require.NoError(t, c.Set(ctx, "prices:7", []byte("b"), time.Minute))
		require.NoError(t, c.Set(ctx, "stores", []byte("c"), time.Minute))

		require.NoError(t, c.DeletePrefix(ctx, "prices:"))

		_, ok, _ := c.Get(ctx, "prices:30")
		assert.False(t, ok)
		_, ok, _ = c.Get(ctx, "stores")
		assert.True(t, ok)
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("server down")
		defer s.SetError("")

		_, _, err := c.Get(ctx, "stores")
		assert.Error(t, err)
		assert.Error(t, c.Set(ctx, "stores", []byte("x"), time.Minute))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})
}

func TestNilRedisClient(t *testing.T) {
	c := NewRedisCache(nil)
	ctx := context.Background()

	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "k", nil, 0))
	assert.Error(t, c.DeletePrefix(ctx, ""))
	assert.NoError(t, Close(nil))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, client := New(ctx, config.RedisConfig{}, nil)
	assert.Nil(t, client)
	assert.IsType(t, &MemoryCache{}, c)

	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	c, client = New(ctx, config.RedisConfig{Address: s.Addr()}, nil)
	require.NotNil(t, client)
	defer client.Close()
	assert.IsType(t, &FailoverCache{}, c)
}
