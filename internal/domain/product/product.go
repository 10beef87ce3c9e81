// Package product holds the read-only view of the external catalog that the
// order core depends on. Catalog management itself lives outside this
// service.
package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as the order core sees it.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
}

// Repository provides read access to the catalog replica. The analytics
// aggregator is its only consumer; per-product lookups stay with the catalog
// collaborator.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
}
