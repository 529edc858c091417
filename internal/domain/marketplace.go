package domain

// ItemCategory groups marketplace items.
type ItemCategory string

const (
	CategoryInsurance   ItemCategory = "insurance"
	CategoryAdvertising ItemCategory = "advertising"
	CategoryEco         ItemCategory = "eco"
)

// MarketplaceItem is a catalog entry redeemable for coins. The catalog is
// static at runtime; purchasing only records the spend.
type MarketplaceItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CoinCost    int64        `json:"coin_cost"`
	Category    ItemCategory `json:"category"`
	Available   bool         `json:"available"`
}
