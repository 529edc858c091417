package chain

import (
	"context"
	"sync"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// Stub is a deterministic Service double with controllable results and
// failure injection. It resolves immediately unless a per-call error is
// set, which makes timing-sensitive behaviour testable without real
// delays.
type Stub struct {
	mu sync.Mutex

	RegisterResult *domain.User
	RegisterErr    error
	EarnErr        error
	SpendResult    bool
	SpendErr       error
	VerifyResult   bool
	VerifyErr      error

	earnCalls  int
	spendCalls int
}

// NewStub returns a Stub whose spend and verify calls succeed.
func NewStub() *Stub {
	return &Stub{
		SpendResult:  true,
		VerifyResult: true,
	}
}

var _ Service = (*Stub)(nil)

func (s *Stub) RegisterUser(ctx context.Context, profile Profile) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RegisterErr != nil {
		return nil, s.RegisterErr
	}

	if s.RegisterResult != nil {
		return s.RegisterResult, nil
	}

	return &domain.User{
		ID:            "stub-user",
		WalletAddress: "0xstub",
		Email:         profile.Email,
		Username:      profile.Username,
		FullName:      profile.FullName,
		DateOfBirth:   profile.DateOfBirth,
		HeightCm:      profile.HeightCm,
		WeightKg:      profile.WeightKg,
		FitnessGoal:   profile.FitnessGoal,
	}, nil
}

func (s *Stub) EarnCoins(ctx context.Context, userID string, caloriesBurned float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.earnCalls++

	if s.EarnErr != nil {
		return 0, s.EarnErr
	}

	return ConvertCalories(caloriesBurned), nil
}

func (s *Stub) SpendCoins(ctx context.Context, userID string, amount int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spendCalls++

	return s.SpendResult, s.SpendErr
}

func (s *Stub) VerifyActivity(ctx context.Context, record domain.ActivityRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.VerifyResult, s.VerifyErr
}

// EarnCalls reports how many times EarnCoins was invoked.
func (s *Stub) EarnCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.earnCalls
}

// SpendCalls reports how many times SpendCoins was invoked.
func (s *Stub) SpendCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.spendCalls
}
