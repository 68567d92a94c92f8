package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/sheetform/internal/redis"
)

func TestNewClient(t *testing.T) {
	_, err := redis.NewClient("", nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)

	client, err := redis.NewClient(mr.Addr(), &redis.Options{PoolSize: 2})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.NoError(t, redis.Ping(context.Background(), client))
}

func TestPingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	mr.Close()
	assert.Error(t, redis.Ping(context.Background(), client))
}
