package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-listing/internal/common/config"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { c.Close() })
	return mr, c
}

func TestRedisClient_GetSetMiss(t *testing.T) {
	mr, c := newMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, found, err := c.Get(ctx, "listing:offers:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "listing:offers:1", []byte(`{"data":[]}`), time.Minute))
	val, found, err := c.Get(ctx, "listing:offers:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"data":[]}`, string(val))

	mr.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "listing:offers:1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisClient_DelPrefix(t *testing.T) {
	_, c := newMiniRedis(t)
	ctx := context.Background()

	for _, k := range []string{"listing:candidates:1", "listing:candidates:2", "listing:offers:1"} {
		require.NoError(t, c.Set(ctx, k, []byte("x"), 0))
	}

	n, err := c.DelPrefix(ctx, "listing:candidates:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, found, _ := c.Get(ctx, "listing:offers:1")
	assert.True(t, found)
}

func TestRedisClient_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewFromClient(db)

	mock.ExpectGet("k").SetErr(errors.New("connection reset"))
	_, found, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, found)

	mock.ExpectGet("k").RedisNil()
	_, found, err = c.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}
