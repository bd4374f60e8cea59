package oauthstate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*redisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &redisStore{client: client}, mr
}

func TestRedisStore_SaveAndConsume(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "state-1", "/dashboard"))

	returnURL, ok, err := store.Consume(ctx, "state-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/dashboard", returnURL)
}

func TestRedisStore_ConsumeIsOneShot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "state-1", "/"))

	_, ok, err := store.Consume(ctx, "state-1")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.Consume(ctx, "state-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ConsumeUnknownOrEmptyState(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Consume(ctx, "never-saved")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Consume(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_StateExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "state-1", "/"))

	mr.FastForward(stateTTL + time.Second)

	_, ok, err := store.Consume(ctx, "state-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
