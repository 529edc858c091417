// Package chain models the remote blockchain collaborator. The contract
// surface is what a real network client would implement; the bundled
// Simulator stands in for it with artificial latency.
package chain

import (
	"context"
	"time"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// CoinsPerCalorie is the calorie-to-coin conversion rate. The conversion
// is always floor(calories * CoinsPerCalorie).
const CoinsPerCalorie = 0.1

// Profile carries the registration fields submitted to the chain.
// Email and date of birth stay off-chain and are merged into the
// returned identity by the caller's policy.
type Profile struct {
	Email       string
	Username    string
	FullName    string
	DateOfBirth string
	HeightCm    int
	WeightKg    int
	FitnessGoal domain.FitnessGoal
}

// Service is the asynchronous remote collaborator. Every call may carry
// network latency; implementations must honour context cancellation
// while waiting.
type Service interface {
	// RegisterUser synthesizes a new on-chain identity for the profile.
	RegisterUser(ctx context.Context, profile Profile) (*domain.User, error)
	// EarnCoins converts burned calories into coins. Pure function of
	// caloriesBurned; consults no external balance.
	EarnCoins(ctx context.Context, userID string, caloriesBurned float64) (int64, error)
	// SpendCoins reports whether the spend settled. The balance check is
	// the ledger's responsibility, not the chain's.
	SpendCoins(ctx context.Context, userID string, amount int64) (bool, error)
	// VerifyActivity attests a finalized activity record.
	VerifyActivity(ctx context.Context, record domain.ActivityRecord) (bool, error)
}

// ConvertCalories applies the conversion policy shared by every
// implementation.
func ConvertCalories(caloriesBurned float64) int64 {
	if caloriesBurned <= 0 {
		return 0
	}

	return int64(caloriesBurned * CoinsPerCalorie)
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
