// Package catalog exposes the read-only marketplace catalog.
package catalog

import (
	"context"
	"errors"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// ErrItemNotFound is returned when no catalog entry matches the requested id.
var ErrItemNotFound = errors.New("catalog: item not found")

// Catalog lists marketplace items. Implementations are read-only; purchases
// never mutate the catalog.
type Catalog interface {
	List(ctx context.Context) ([]domain.MarketplaceItem, error)
	ListByCategory(ctx context.Context, category domain.ItemCategory) ([]domain.MarketplaceItem, error)
	Get(ctx context.Context, id string) (*domain.MarketplaceItem, error)
}
