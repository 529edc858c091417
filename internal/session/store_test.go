package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser() *domain.User {
	return &domain.User{
		ID:            "user-1",
		WalletAddress: "0xabc123",
		Username:      "jo",
		FullName:      "Jo Runner",
		CreatedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testRecord(id string, coins int64, ts time.Time) domain.ActivityRecord {
	return domain.ActivityRecord{
		ID:             id,
		UserID:         "user-1",
		ActivityType:   domain.ActivityWorkout,
		DurationMin:    2,
		CaloriesBurned: coins * 10,
		CoinsEarned:    coins,
		Timestamp:      ts,
	}
}

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()

	storage := NewMemoryStorage()
	return NewStore(storage, testLogger()), storage
}

func TestStore_LoginAndRehydrate(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)

	err := store.Login(ctx, testUser(), domain.Coin{Balance: 5, TotalEarned: 5}, nil)
	require.NoError(t, err)
	assert.True(t, store.IsConnected())

	// A fresh store over the same storage sees the persisted session.
	fresh := NewStore(storage, testLogger())
	require.NoError(t, fresh.Rehydrate(ctx))
	assert.True(t, fresh.IsConnected())
	assert.Equal(t, "user-1", fresh.User().ID)
	assert.Equal(t, int64(5), fresh.Coins().Balance)
}

func TestStore_RehydrateEmptyStorage(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Rehydrate(context.Background()))
	assert.False(t, store.IsConnected())
	assert.Nil(t, store.User())
}

func TestStore_LogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Login(ctx, testUser(), domain.Coin{}, nil))

	require.NoError(t, store.Logout(ctx))
	first := store.Snapshot()

	require.NoError(t, store.Logout(ctx))
	second := store.Snapshot()

	assert.Equal(t, first, second)
	assert.False(t, store.IsConnected())
	assert.Nil(t, store.User())
	assert.Equal(t, domain.Coin{}, store.Coins())
}

func TestStore_CompleteActivity(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.Login(ctx, testUser(), domain.Coin{}, nil))

	record := testRecord("act-1", 4, time.Now())
	require.NoError(t, store.CompleteActivity(ctx, record, 4))

	coins := store.Coins()
	assert.Equal(t, int64(4), coins.Balance)
	assert.Equal(t, int64(4), coins.TotalEarned)
	assert.True(t, coins.Consistent())
	assert.Len(t, store.Activities(), 1)
}

func TestStore_CompleteActivityRollbackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)
	require.NoError(t, store.Login(ctx, testUser(), domain.Coin{}, nil))

	storage.FailNextSave = errors.New("device storage unavailable")

	err := store.CompleteActivity(ctx, testRecord("act-1", 4, time.Now()), 4)
	require.Error(t, err)

	// No credit without a record, no record without a credit.
	assert.Equal(t, domain.Coin{}, store.Coins())
	assert.Empty(t, store.Activities())
}

func TestStore_CompleteActivityWithoutSession(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.CompleteActivity(context.Background(), testRecord("act-1", 4, time.Now()), 4)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Purchase(t *testing.T) {
	item := domain.MarketplaceItem{ID: "item-1", Title: "Plant 1 Tree", CoinCost: 100, Category: domain.CategoryEco, Available: true}

	testCases := []struct {
		name        string
		balance     int64
		expectErr   error
		wantBalance int64
		wantSpent   int64
	}{
		{name: "exact balance succeeds", balance: 100, wantBalance: 0, wantSpent: 100},
		{name: "one coin short fails", balance: 99, expectErr: domain.ErrInsufficientFunds, wantBalance: 99, wantSpent: 0},
		{name: "zero balance fails", balance: 0, expectErr: domain.ErrInsufficientFunds, wantBalance: 0, wantSpent: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store, _ := newTestStore(t)
			require.NoError(t, store.Login(ctx, testUser(), domain.Coin{Balance: tc.balance, TotalEarned: tc.balance}, nil))

			err := store.Purchase(ctx, item)

			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
			} else {
				require.NoError(t, err)
			}

			coins := store.Coins()
			assert.Equal(t, tc.wantBalance, coins.Balance)
			assert.Equal(t, tc.wantSpent, coins.TotalSpent)
			assert.True(t, coins.Consistent())
		})
	}
}

func TestStore_PurchaseRollbackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)
	require.NoError(t, store.Login(ctx, testUser(), domain.Coin{Balance: 500, TotalEarned: 500}, nil))

	storage.FailNextSave = errors.New("device storage unavailable")

	err := store.Purchase(ctx, domain.MarketplaceItem{ID: "item-1", CoinCost: 100})
	require.Error(t, err)
	assert.Equal(t, int64(500), store.Coins().Balance)
}

func TestStore_SetTrackingNotPersisted(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)
	require.NoError(t, store.Login(ctx, testUser(), domain.Coin{}, nil))

	store.SetTracking(true)
	assert.True(t, store.IsTracking())

	fresh := NewStore(storage, testLogger())
	require.NoError(t, fresh.Rehydrate(ctx))
	assert.False(t, fresh.IsTracking())
}
