package chain

import (
	"context"
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

func TestConvertCalories(t *testing.T) {
	testCases := []struct {
		name     string
		calories float64
		expected int64
	}{
		{name: "zero", calories: 0, expected: 0},
		{name: "below one coin", calories: 9.9, expected: 0},
		{name: "exact boundary", calories: 10, expected: 1},
		{name: "forty calories", calories: 40, expected: 4},
		{name: "fraction floors down", calories: 49.99, expected: 4},
		{name: "negative clamps to zero", calories: -5, expected: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ConvertCalories(tc.calories))
		})
	}
}

func TestSimulator_EarnCoins(t *testing.T) {
	sim := NewSimulator(testLogger(), WithLatency(0))

	coins, err := sim.EarnCoins(context.Background(), "user-1", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(4), coins)
}

func TestSimulator_RegisterUser(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sim := NewSimulator(testLogger(), WithLatency(0), WithClock(func() time.Time { return created }))

	user, err := sim.RegisterUser(context.Background(), Profile{
		Email:       "jo@example.com",
		Username:    "jo",
		FullName:    "Jo Runner",
		DateOfBirth: "1990-01-01",
		HeightCm:    180,
		WeightKg:    75,
		FitnessGoal: "endurance",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.True(t, len(user.WalletAddress) > 10)
	assert.Equal(t, "0x", user.WalletAddress[:2])
	assert.False(t, user.IsVerified, "new users start unverified")
	assert.Equal(t, created, user.CreatedAt)
	assert.Equal(t, "jo@example.com", user.Email, "email is kept on the off-chain profile")
}

func TestSimulator_SpendAndVerifyAlwaysSucceed(t *testing.T) {
	sim := NewSimulator(testLogger(), WithLatency(0))

	ok, err := sim.SpendCoins(context.Background(), "user-1", 10_000)
	require.NoError(t, err)
	assert.True(t, ok)

	verified, err := sim.VerifyActivity(context.Background(), testRecord())
	require.NoError(t, err)
	assert.True(t, verified)
}

func testRecord() domain.ActivityRecord {
	return domain.ActivityRecord{
		ID:             "act-1",
		UserID:         "user-1",
		ActivityType:   domain.ActivityWorkout,
		DurationMin:    2,
		CaloriesBurned: 40,
		CoinsEarned:    4,
		Timestamp:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSimulator_CancelledContext(t *testing.T) {
	sim := NewSimulator(testLogger(), WithLatency(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.EarnCoins(ctx, "user-1", 40)
	assert.ErrorIs(t, err, context.Canceled)
}
