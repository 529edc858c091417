package catalog

import (
	"context"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// defaultItems is the built-in catalog shipped with the app.
var defaultItems = []domain.MarketplaceItem{
	{
		ID:          "insurance-10",
		Title:       "Insurance Discount 10%",
		Description: "10% off your next health insurance premium.",
		CoinCost:    500,
		Category:    domain.CategoryInsurance,
		Available:   true,
	},
	{
		ID:          "insurance-25",
		Title:       "Insurance Discount 25%",
		Description: "25% off your next health insurance premium.",
		CoinCost:    1200,
		Category:    domain.CategoryInsurance,
		Available:   true,
	},
	{
		ID:          "ad-revenue",
		Title:       "Partner Ad Revenue",
		Description: "Share of partner advertising revenue for this month.",
		CoinCost:    200,
		Category:    domain.CategoryAdvertising,
		Available:   true,
	},
	{
		ID:          "ad-premium",
		Title:       "Premium Ad Slots",
		Description: "Priority placement in the partner offer feed.",
		CoinCost:    800,
		Category:    domain.CategoryAdvertising,
		Available:   true,
	},
	{
		ID:          "tree-1",
		Title:       "Plant 1 Tree",
		Description: "We plant one tree on your behalf.",
		CoinCost:    100,
		Category:    domain.CategoryEco,
		Available:   true,
	},
	{
		ID:          "tree-10",
		Title:       "Plant 10 Trees",
		Description: "We plant ten trees on your behalf.",
		CoinCost:    900,
		Category:    domain.CategoryEco,
		Available:   true,
	},
}

// Memory is the static in-process catalog. It is safe for concurrent use
// because the backing slice is never mutated after construction.
type Memory struct {
	items []domain.MarketplaceItem
}

// NewMemory builds a catalog from the given items, or the built-in set when
// none are provided.
func NewMemory(items ...domain.MarketplaceItem) *Memory {
	if len(items) == 0 {
		items = defaultItems
	}
	return &Memory{items: items}
}

func (m *Memory) List(_ context.Context) ([]domain.MarketplaceItem, error) {
	out := make([]domain.MarketplaceItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *Memory) ListByCategory(_ context.Context, category domain.ItemCategory) ([]domain.MarketplaceItem, error) {
	var out []domain.MarketplaceItem
	for _, item := range m.items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (*domain.MarketplaceItem, error) {
	for _, item := range m.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, ErrItemNotFound
}
