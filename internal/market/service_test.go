package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/catalog"
	"github.com/fitcoin-app/fitcoin/internal/chain"
	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, balance int64) (*Service, *session.Store, *chain.Stub) {
	t.Helper()

	store := session.NewStore(session.NewMemoryStorage(), testLogger())
	user := &domain.User{ID: "user-1", WalletAddress: "0xabc123", Username: "jo"}
	coins := domain.Coin{Balance: balance, TotalEarned: balance}
	require.NoError(t, store.Login(context.Background(), user, coins, nil))

	stub := chain.NewStub()
	svc := NewService(store, catalog.NewMemory(), stub, testLogger())
	return svc, store, stub
}

func TestService_Purchase(t *testing.T) {
	svc, store, _ := newTestService(t, 500)

	item, err := svc.Purchase(context.Background(), "tree-1")
	require.NoError(t, err)
	assert.Equal(t, "Plant 1 Tree", item.Title)

	coins := store.Coins()
	assert.Equal(t, int64(400), coins.Balance)
	assert.Equal(t, int64(100), coins.TotalSpent)
	assert.Equal(t, coins.TotalEarned-coins.TotalSpent, coins.Balance)
}

func TestService_PurchaseInsufficientFunds(t *testing.T) {
	svc, store, stub := newTestService(t, 0)

	_, err := svc.Purchase(context.Background(), "insurance-10")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeInsufficientFunds, appErr.Code)
	assert.False(t, appErr.Retryable)

	// Underfunded purchases never reach the remote service.
	assert.Zero(t, stub.SpendCalls())
	assert.Equal(t, int64(0), store.Coins().TotalSpent)
}

func TestService_PurchaseExactBalance(t *testing.T) {
	svc, store, _ := newTestService(t, 100)

	_, err := svc.Purchase(context.Background(), "tree-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), store.Coins().Balance)
}

func TestService_PurchaseUnknownItem(t *testing.T) {
	svc, store, _ := newTestService(t, 1000)

	_, err := svc.Purchase(context.Background(), "no-such-item")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Equal(t, int64(1000), store.Coins().Balance)
}

func TestService_PurchaseWithoutSession(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), testLogger())
	svc := NewService(store, catalog.NewMemory(), chain.NewStub(), testLogger())

	_, err := svc.Purchase(context.Background(), "tree-1")

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotRegistered, appErr.Code)
}

func TestService_PurchaseRemoteFailureLeavesLedger(t *testing.T) {
	svc, store, stub := newTestService(t, 500)
	stub.SpendErr = errors.New("chain unavailable")

	_, err := svc.Purchase(context.Background(), "tree-1")
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))

	coins := store.Coins()
	assert.Equal(t, int64(500), coins.Balance)
	assert.Equal(t, int64(0), coins.TotalSpent)
}

func TestService_PurchaseUnsettledSpend(t *testing.T) {
	svc, store, stub := newTestService(t, 500)
	stub.SpendResult = false

	_, err := svc.Purchase(context.Background(), "tree-1")
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeRemoteOperationFailed, appErr.Code)
	assert.Equal(t, int64(500), store.Coins().Balance)
}

func TestService_Items(t *testing.T) {
	svc, _, _ := newTestService(t, 0)

	all, err := svc.Items(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 6)

	eco, err := svc.Items(context.Background(), domain.CategoryEco)
	require.NoError(t, err)
	require.Len(t, eco, 2)
	for _, item := range eco {
		assert.Equal(t, domain.CategoryEco, item.Category)
	}
}
