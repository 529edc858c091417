package ratelimit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_RemovesEmptyKeys(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	key := keyPrefix + "login:10.0.0.4"
	require.NoError(t, client.ZAdd(ctx, key, redis.Z{Score: 1, Member: "stale"}).Err())

	c := NewCleaner(client, testLogger(), time.Minute)
	c.cleanup(ctx)

	exists, err := client.Exists(ctx, key).Result()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestCleaner_WarnsOnPipelineFailure(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	// A plain string under the rate limit namespace makes the zset prune
	// fail with WRONGTYPE.
	require.NoError(t, client.Set(ctx, keyPrefix+"broken", "not-a-zset", 0).Err())

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	c := NewCleaner(client, log, time.Minute)
	c.cleanup(ctx)

	assert.Contains(t, buf.String(), "cleanup pipeline failed")
}
