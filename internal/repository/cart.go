package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailcore/storefront/internal/domain/cart"
)

const (
	getCartSQL = `SELECT items FROM carts WHERE user_id = $1`

	replaceCartSQL = `INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository holds the server copy of each user's cart as a single JSONB
// document per user. The whole item list is replaced on every sync, which
// matches the last-writer-wins policy of cart synchronization.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's server cart. A user without a cart row gets an
// empty item list, not an error.
func (r *CartRepository) Get(ctx context.Context, userID string) ([]cart.Item, error) {
	var itemsJSON []byte
	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&itemsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []cart.Item{}, nil
		}
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	var items []cart.Item
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling cart items: %w", err)
	}
	return items, nil
}

// Replace overwrites the user's server cart with the given items.
func (r *CartRepository) Replace(ctx context.Context, userID string, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling cart items: %w", err)
	}

	_, err = r.pool.Exec(ctx, replaceCartSQL, userID, itemsJSON, time.Now())
	if err != nil {
		return fmt.Errorf("replacing cart for user %q: %w", userID, err)
	}
	return nil
}
