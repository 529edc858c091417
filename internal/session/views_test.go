package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

func TestStore_TodayAndLifetime(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	now := time.Date(2025, 6, 15, 18, 0, 0, 0, time.Local)
	yesterday := now.Add(-24 * time.Hour)

	history := []domain.ActivityRecord{
		testRecord("act-old", 6, yesterday),
		testRecord("act-new", 4, now.Add(-2*time.Hour)),
	}

	require.NoError(t, store.Login(ctx, testUser(), domain.Coin{Balance: 10, TotalEarned: 10}, history))

	today := store.Today(now)
	assert.Len(t, today.Activities, 1)
	assert.Equal(t, "act-new", today.Activities[0].ID)
	assert.Equal(t, int64(40), today.Calories)
	assert.Equal(t, int64(4), today.Coins)

	lifetime := store.Lifetime()
	assert.Equal(t, 2, lifetime.TotalActivities)
	assert.Equal(t, int64(100), lifetime.TotalCalories)
	assert.Equal(t, int64(50), lifetime.AvgCalories)
}

func TestStore_LifetimeEmptyHistory(t *testing.T) {
	store, _ := newTestStore(t)

	lifetime := store.Lifetime()
	assert.Equal(t, 0, lifetime.TotalActivities)
	assert.Equal(t, int64(0), lifetime.AvgCalories)
}

func TestStore_Recent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	base := time.Date(2025, 6, 15, 8, 0, 0, 0, time.Local)
	history := []domain.ActivityRecord{
		testRecord("act-1", 1, base),
		testRecord("act-2", 2, base.Add(time.Hour)),
		testRecord("act-3", 3, base.Add(2*time.Hour)),
	}

	require.NoError(t, store.Login(ctx, testUser(), domain.Coin{}, history))

	recent := store.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "act-3", recent[0].ID, "newest first")
	assert.Equal(t, "act-2", recent[1].ID)

	all := store.Recent(0)
	assert.Len(t, all, 3)
}
