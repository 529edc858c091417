package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

func TestMemory_List(t *testing.T) {
	c := NewMemory()

	items, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 6)

	for _, item := range items {
		assert.True(t, item.Available, "built-in item %s should be available", item.ID)
		assert.Positive(t, item.CoinCost)
	}
}

func TestMemory_ListByCategory(t *testing.T) {
	c := NewMemory()

	testCases := []struct {
		category domain.ItemCategory
		want     int
	}{
		{domain.CategoryInsurance, 2},
		{domain.CategoryAdvertising, 2},
		{domain.CategoryEco, 2},
		{domain.ItemCategory("unknown"), 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(string(tc.category), func(t *testing.T) {
			items, err := c.ListByCategory(context.Background(), tc.category)
			require.NoError(t, err)
			assert.Len(t, items, tc.want)
			for _, item := range items {
				assert.Equal(t, tc.category, item.Category)
			}
		})
	}
}

func TestMemory_Get(t *testing.T) {
	c := NewMemory()

	item, err := c.Get(context.Background(), "tree-1")
	require.NoError(t, err)
	assert.Equal(t, "Plant 1 Tree", item.Title)
	assert.Equal(t, int64(100), item.CoinCost)

	_, err = c.Get(context.Background(), "no-such-item")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMemory_ListCopiesItems(t *testing.T) {
	c := NewMemory()

	items, err := c.List(context.Background())
	require.NoError(t, err)

	items[0].CoinCost = 1

	fresh, err := c.Get(context.Background(), items[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, int64(1), fresh.CoinCost, "mutating a listing must not touch the catalog")
}
