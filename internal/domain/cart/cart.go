package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is an in-progress selection line. Name, image and price are
// denormalized from the catalog at add time. Quantity is always at least 1;
// removal is an explicit operation, never a side effect of a quantity
// change.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Repository holds the server copy of each user's cart.
type Repository interface {
	Get(ctx context.Context, userID string) ([]Item, error)
	Replace(ctx context.Context, userID string, items []Item) error
}

// Add merges an item into the cart, keeping at most one entry per product.
// An existing entry absorbs the added quantity; a new entry is appended with
// a quantity of at least 1.
func Add(items []Item, it Item) []Item {
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	for i := range items {
		if items[i].ProductID == it.ProductID {
			items[i].Quantity += it.Quantity
			return items
		}
	}
	return append(items, it)
}

// UpdateQuantity sets the quantity for the given product, clamped to a
// minimum of 1. Products not in the cart are left untouched.
func UpdateQuantity(items []Item, productID string, quantity int) []Item {
	if quantity < 1 {
		quantity = 1
	}
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	return items
}

// Remove deletes the entry for the given product, if present.
func Remove(items []Item, productID string) []Item {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// Dedupe collapses duplicate product entries by summing quantities,
// preserving first-seen order. Client caches are expected to be deduplicated
// already; this guards the reconciliation invariant against ones that are
// not.
func Dedupe(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
