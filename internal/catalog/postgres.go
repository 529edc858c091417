package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// Postgres is a read-only catalog backed by a marketplace_items table.
// Deployments that manage the catalog centrally use this instead of the
// built-in static set.
type Postgres struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgres creates a SQL-backed catalog.
func NewPostgres(db *sql.DB, log *slog.Logger) *Postgres {
	return &Postgres{
		db:  db,
		log: log,
	}
}

const selectColumns = `id, title, description, coin_cost, category, available`

// List returns every available catalog item ordered by cost.
func (p *Postgres) List(ctx context.Context) ([]domain.MarketplaceItem, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM marketplace_items
		WHERE available = TRUE
		ORDER BY coin_cost ASC
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		if p.log != nil {
			p.log.Error("failed to list catalog items", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select catalog items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListByCategory returns available items within a single category.
func (p *Postgres) ListByCategory(ctx context.Context, category domain.ItemCategory) ([]domain.MarketplaceItem, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM marketplace_items
		WHERE available = TRUE AND category = $1
		ORDER BY coin_cost ASC
	`

	rows, err := p.db.QueryContext(ctx, query, string(category))
	if err != nil {
		if p.log != nil {
			p.log.Error("failed to list catalog items by category",
				slog.String("category", string(category)), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select catalog items by category: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Get fetches a single item by id. Missing rows map to ErrItemNotFound.
func (p *Postgres) Get(ctx context.Context, id string) (*domain.MarketplaceItem, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM marketplace_items
		WHERE id = $1
	`

	row := p.db.QueryRowContext(ctx, query, id)

	var item domain.MarketplaceItem
	if err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.CoinCost,
		&item.Category,
		&item.Available,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}

		if p.log != nil {
			p.log.Error("failed to fetch catalog item", slog.String("item_id", id), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select catalog item %q: %w", id, err)
	}

	return &item, nil
}

func scanItems(rows *sql.Rows) ([]domain.MarketplaceItem, error) {
	var items []domain.MarketplaceItem
	for rows.Next() {
		var item domain.MarketplaceItem
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.CoinCost,
			&item.Category,
			&item.Available,
		); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}
	return items, nil
}
