package chain

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// DefaultLatency approximates a testnet confirmation round-trip. The
// duration itself is not part of the contract.
const DefaultLatency = 1500 * time.Millisecond

// Simulator is the in-process stand-in for the chain service. Every
// operation waits out the configured latency before resolving.
type Simulator struct {
	latency time.Duration
	log     *slog.Logger
	now     func() time.Time
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithLatency overrides the artificial per-call delay.
func WithLatency(d time.Duration) Option {
	return func(s *Simulator) {
		s.latency = d
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		s.now = now
	}
}

// NewSimulator constructs a Simulator with the default latency.
func NewSimulator(log *slog.Logger, opts ...Option) *Simulator {
	if log == nil {
		log = slog.Default()
	}

	s := &Simulator{
		latency: DefaultLatency,
		log:     log,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ Service = (*Simulator)(nil)

// RegisterUser synthesizes an identity with a fresh wallet address. New
// users start unverified; verification is a later on-chain attestation.
func (s *Simulator) RegisterUser(ctx context.Context, profile Profile) (*domain.User, error) {
	if err := sleepCtx(ctx, s.latency); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:            uuid.NewString(),
		WalletAddress: newWalletAddress(),
		Email:         profile.Email,
		Username:      profile.Username,
		FullName:      profile.FullName,
		DateOfBirth:   profile.DateOfBirth,
		HeightCm:      profile.HeightCm,
		WeightKg:      profile.WeightKg,
		FitnessGoal:   profile.FitnessGoal,
		IsVerified:    false,
		CreatedAt:     s.now().UTC(),
	}

	s.log.Info("chain: user registered",
		slog.String("user_id", user.ID),
		slog.String("wallet", user.ShortAddress()),
	)

	return user, nil
}

// EarnCoins applies the conversion policy after the simulated delay.
func (s *Simulator) EarnCoins(ctx context.Context, userID string, caloriesBurned float64) (int64, error) {
	if err := sleepCtx(ctx, s.latency); err != nil {
		return 0, err
	}

	coins := ConvertCalories(caloriesBurned)

	s.log.Debug("chain: coins earned",
		slog.String("user_id", userID),
		slog.Float64("calories", caloriesBurned),
		slog.Int64("coins", coins),
	)

	return coins, nil
}

// SpendCoins always settles in the simulated environment.
func (s *Simulator) SpendCoins(ctx context.Context, userID string, amount int64) (bool, error) {
	if err := sleepCtx(ctx, s.latency); err != nil {
		return false, err
	}

	s.log.Debug("chain: coins spent",
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
	)

	return true, nil
}

// VerifyActivity always attests in the simulated environment.
func (s *Simulator) VerifyActivity(ctx context.Context, record domain.ActivityRecord) (bool, error) {
	if err := sleepCtx(ctx, s.latency); err != nil {
		return false, err
	}

	return true, nil
}

func newWalletAddress() string {
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
