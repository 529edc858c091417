package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcoin-app/fitcoin/internal/domain"
	appredis "github.com/fitcoin-app/fitcoin/pkg/redis"
)

func setupTestRedis(t *testing.T) *appredis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return appredis.NewFromClient(client)
}

func TestRedisStorage_SaveAndLoad(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())
	ctx := context.Background()

	snap := &Snapshot{
		User:  testUser(),
		Coins: domain.Coin{Balance: 4, TotalEarned: 4},
		Activities: []domain.ActivityRecord{
			testRecord("act-1", 4, time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)),
		},
	}

	require.NoError(t, storage.Save(ctx, snap))

	loaded, err := storage.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded.User)
	assert.Equal(t, snap.User.ID, loaded.User.ID)
	assert.Equal(t, snap.Coins, loaded.Coins)
	require.Len(t, loaded.Activities, 1)
	assert.Equal(t, "act-1", loaded.Activities[0].ID)
}

func TestRedisStorage_LoadNotFound(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())

	snap, err := storage.Load(context.Background())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisStorage_Clear(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, &Snapshot{User: testUser()}))
	require.NoError(t, storage.Clear(ctx))

	snap, err := storage.Load(ctx)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisStorage_SaveRejectsEmptySnapshot(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())

	err := storage.Save(context.Background(), &Snapshot{})
	assert.Error(t, err)
}

func TestRedisStorage_EmptyHistoryRoundTrip(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, &Snapshot{User: testUser()}))

	loaded, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, loaded.Activities)
	assert.Empty(t, loaded.Activities)
}
