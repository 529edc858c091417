package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/chain"
	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *session.Store, *session.MemoryStorage, *chain.Stub) {
	t.Helper()

	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, testLogger())
	stub := chain.NewStub()

	return NewService(store, storage, stub, testLogger()), store, storage, stub
}

func validInput() RegistrationInput {
	return RegistrationInput{
		Email:       "jo@example.com",
		Username:    "jorunner",
		FullName:    "Jo Runner",
		DateOfBirth: "1990-04-12",
		HeightCm:    180,
		WeightKg:    75,
		FitnessGoal: domain.GoalEndurance,
		AgreeTerms:  true,
		AgreeHealth: true,
	}
}

func TestService_Register(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.True(t, store.IsConnected())
	assert.Equal(t, user.ID, store.User().ID)
	assert.Equal(t, domain.Coin{}, store.Coins(), "registration starts with a zero ledger")
}

func TestService_RegisterValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*RegistrationInput)
	}{
		{name: "bad email", mutate: func(in *RegistrationInput) { in.Email = "not-an-email" }},
		{name: "short username", mutate: func(in *RegistrationInput) { in.Username = "jo" }},
		{name: "bad date of birth", mutate: func(in *RegistrationInput) { in.DateOfBirth = "12/04/1990" }},
		{name: "height out of range", mutate: func(in *RegistrationInput) { in.HeightCm = 10 }},
		{name: "unknown goal", mutate: func(in *RegistrationInput) { in.FitnessGoal = "get-swole" }},
		{name: "terms not accepted", mutate: func(in *RegistrationInput) { in.AgreeTerms = false }},
		{name: "health consent not given", mutate: func(in *RegistrationInput) { in.AgreeHealth = false }},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _, _ := newTestService(t)

			input := validInput()
			tc.mutate(&input)

			_, err := svc.Register(context.Background(), input)
			require.Error(t, err)

			var appErr *apperr.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)
			assert.False(t, store.IsConnected(), "validation failure mutates nothing")
		})
	}
}

func TestService_RegisterRemoteFailure(t *testing.T) {
	svc, store, _, stub := newTestService(t)
	stub.RegisterErr = errors.New("chain unavailable")

	_, err := svc.Register(context.Background(), validInput())
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
	assert.False(t, store.IsConnected())
}

func TestService_LoginWithoutPersistedIdentity(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Login(context.Background())
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotRegistered, appErr.Code)
}

func TestService_LoginRestoresPersistedSession(t *testing.T) {
	svc, store, storage, _ := newTestService(t)

	persisted := &session.Snapshot{
		User:  &domain.User{ID: "user-1", WalletAddress: "0xabc", Username: "jo"},
		Coins: domain.Coin{Balance: 42, TotalEarned: 50, TotalSpent: 8},
	}
	require.NoError(t, storage.Save(context.Background(), persisted))

	user, err := svc.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, int64(42), store.Coins().Balance)
}

func TestService_ConnectWallet(t *testing.T) {
	svc, store, storage, _ := newTestService(t)

	persisted := &session.Snapshot{
		User: &domain.User{ID: "user-1", WalletAddress: "0xABCdef", Username: "jo"},
	}
	require.NoError(t, storage.Save(context.Background(), persisted))

	t.Run("matching address case-insensitive", func(t *testing.T) {
		user, err := svc.ConnectWallet(context.Background(), "0xabcDEF")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.True(t, store.IsConnected())
	})

	t.Run("unknown address prompts registration", func(t *testing.T) {
		_, err := svc.ConnectWallet(context.Background(), "0xother")

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.CodeNotRegistered, appErr.Code)
	})

	t.Run("empty address", func(t *testing.T) {
		_, err := svc.ConnectWallet(context.Background(), "  ")

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.CodeValidation, appErr.Code)
	})
}

func TestService_LogoutTwiceIsIdempotent(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	require.NoError(t, svc.Logout(context.Background()))

	assert.False(t, store.IsConnected())

	_, err = svc.Login(context.Background())
	require.Error(t, err, "logout clears the persisted identity")
}
