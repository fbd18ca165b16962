package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/rave-tracker/internal/config"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := models.Event{
		UID:   "9e0bb0f4-3e9f-4f36-ae20-6e915c0dbb5a",
		Title: "Open Air",
		Genre: "psytrance",
	}
	err := cache.Set("event:9e0bb0f4", expected, time.Minute)
	require.NoError(t, err)

	var actual models.Event
	found, err := cache.Get("event:9e0bb0f4", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.Title, actual.Title)
	assert.Equal(t, expected.Genre, actual.Genre)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out models.Event
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Set("key", "value", time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("key")
	require.NoError(t, err)

	var out string
	found, err := cache.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidatePrefix(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("events:list:1", "a", time.Minute))
	require.NoError(t, cache.Set("events:list:2", "b", time.Minute))
	require.NoError(t, cache.Set("other", "c", time.Minute))

	err := cache.InvalidatePrefix("events:list:")
	require.NoError(t, err)

	var out string
	found, err := cache.Get("events:list:1", &out)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = cache.Get("other", &out)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Db.Set(context.Background(), "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out models.Event
	found, err := cache.Get("bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:9999",
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}
