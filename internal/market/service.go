// Package market coordinates marketplace purchases between the catalog,
// the remote coin service, and the session store.
package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/catalog"
	"github.com/fitcoin-app/fitcoin/internal/chain"
	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/session"
)

// Service executes purchases. The local balance check runs before any remote
// call so an underfunded purchase never reaches the chain.
type Service struct {
	store   *session.Store
	catalog catalog.Catalog
	chain   chain.Service
	log     *slog.Logger
}

func NewService(store *session.Store, cat catalog.Catalog, svc chain.Service, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		catalog: cat,
		chain:   svc,
		log:     log,
	}
}

// Items lists catalog entries, optionally filtered by category.
func (s *Service) Items(ctx context.Context, category domain.ItemCategory) ([]domain.MarketplaceItem, error) {
	if category == "" {
		return s.catalog.List(ctx)
	}
	return s.catalog.ListByCategory(ctx, category)
}

// Purchase resolves the item, settles the spend remotely, and debits the
// ledger. No coins leave the ledger unless the remote spend settled first.
func (s *Service) Purchase(ctx context.Context, itemID string) (*domain.MarketplaceItem, error) {
	user := s.store.User()
	if user == nil {
		return nil, apperr.NewNotRegistered()
	}

	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown item %q", itemID))
	}
	if !item.Available {
		return nil, apperr.NewValidationError(fmt.Sprintf("item %q is not available", itemID))
	}

	if coins := s.store.Coins(); coins.Balance < item.CoinCost {
		return nil, apperr.NewInsufficientFunds(coins.Balance, item.CoinCost)
	}

	err = apperr.WithRetry(ctx, func() error {
		settled, spendErr := s.chain.SpendCoins(ctx, user.ID, item.CoinCost)
		if spendErr != nil {
			return apperr.NewRemoteOperationFailed("spend coins", spendErr)
		}
		if !settled {
			return apperr.NewRemoteOperationFailed("spend coins", fmt.Errorf("spend of %d not settled", item.CoinCost))
		}
		return nil
	})
	if err != nil {
		s.log.Error("purchase rejected by remote service",
			slog.String("item_id", item.ID),
			slog.Any("error", err),
		)
		return nil, err
	}

	if err := s.store.Purchase(ctx, *item); err != nil {
		return nil, err
	}

	return item, nil
}
