package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/storefront/internal/domain/order"
	"github.com/retailcore/storefront/internal/domain/product"
)

type staticOrders []order.Order

func (s staticOrders) ListAll(_ context.Context) ([]order.Order, error) {
	return s, nil
}

type staticCatalog []product.Product

func (s staticCatalog) List(_ context.Context) ([]product.Product, error) {
	return s, nil
}

func newAggregator(orders []order.Order, catalog []product.Product, now time.Time) *Aggregator {
	a := NewAggregator(staticOrders(orders), staticCatalog(catalog))
	a.now = func() time.Time { return now }
	return a
}

func makeOrder(userID string, total int64, status order.Status, createdAt time.Time, items ...order.Item) order.Order {
	return order.Order{
		UserID:     userID,
		TotalPrice: decimal.NewFromInt(total),
		Status:     status,
		CreatedAt:  createdAt,
		Items:      items,
	}
}

func TestAggregator_EmptyStore(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	catalog := []product.Product{
		{ID: "p1", Name: "Shoes"},
		{ID: "p2", Name: "Socks"},
	}

	snap, err := newAggregator(nil, catalog, now).Compute(context.Background())
	require.NoError(t, err)

	assert.Zero(t, snap.TotalOrders)
	assert.Zero(t, snap.TotalCustomers)
	assert.True(t, snap.TotalRevenue.IsZero())
	assert.True(t, snap.CompletedRevenue.IsZero())
	assert.True(t, snap.PendingRevenue.IsZero())

	// Zero-sales catalog products still rank, with zero counts.
	require.Len(t, snap.TopByQuantity, 2)
	for _, s := range snap.TopByQuantity {
		assert.Zero(t, s.Quantity)
		assert.True(t, s.Revenue.IsZero())
	}

	require.Len(t, snap.DailyTrend, 7)
	require.Len(t, snap.MonthlyTrend, 6)
	for _, p := range snap.DailyTrend {
		assert.Zero(t, p.Orders)
		assert.True(t, p.Revenue.IsZero())
	}
}

func TestAggregator_RevenueAndStatusSplit(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{
		makeOrder("u1", 100, order.StatusDelivered, now),
		makeOrder("u2", 50, order.StatusShipped, now),
		makeOrder("u1", 30, order.StatusPending, now),
		makeOrder("u3", 20, order.StatusPacked, now),
		makeOrder("u3", 0, order.StatusApproved, now),
	}

	snap, err := newAggregator(orders, nil, now).Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, snap.TotalOrders)
	assert.Equal(t, 3, snap.TotalCustomers)
	// Revenue is recognized at creation; zero-total orders contribute zero.
	assert.True(t, decimal.NewFromInt(200).Equal(snap.TotalRevenue), "got %s", snap.TotalRevenue)
	assert.True(t, decimal.NewFromInt(150).Equal(snap.CompletedRevenue), "got %s", snap.CompletedRevenue)
	assert.True(t, decimal.NewFromInt(50).Equal(snap.PendingRevenue), "got %s", snap.PendingRevenue)

	assert.Equal(t, 1, snap.StatusCounts[order.StatusDelivered])
	assert.Equal(t, 1, snap.StatusCounts[order.StatusShipped])
	assert.Equal(t, 1, snap.StatusCounts[order.StatusPending])
	assert.Equal(t, 1, snap.StatusCounts[order.StatusPacked])
	assert.Equal(t, 1, snap.StatusCounts[order.StatusApproved])
}

func TestAggregator_TrendBuckets(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{
		makeOrder("u1", 10, order.StatusPending, now),
		makeOrder("u1", 20, order.StatusPending, now.AddDate(0, 0, -1)),
		makeOrder("u1", 30, order.StatusPending, now.AddDate(0, 0, -6)),
		// Outside the daily window but inside the monthly one.
		makeOrder("u1", 40, order.StatusPending, now.AddDate(0, 0, -20)),
		// Outside both windows.
		makeOrder("u1", 50, order.StatusPending, now.AddDate(0, -8, 0)),
	}

	snap, err := newAggregator(orders, nil, now).Compute(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.DailyTrend, 7)
	assert.Equal(t, "2025-06-09", snap.DailyTrend[0].Label)
	assert.Equal(t, "2025-06-15", snap.DailyTrend[6].Label)

	assert.Equal(t, 1, snap.DailyTrend[6].Orders)
	assert.True(t, decimal.NewFromInt(10).Equal(snap.DailyTrend[6].Revenue))
	assert.Equal(t, 1, snap.DailyTrend[5].Orders)
	assert.Equal(t, 1, snap.DailyTrend[0].Orders)

	require.Len(t, snap.MonthlyTrend, 6)
	assert.Equal(t, "Jan 2025", snap.MonthlyTrend[0].Label)
	assert.Equal(t, "Jun 2025", snap.MonthlyTrend[5].Label)

	// The three June orders plus the late-May one.
	assert.Equal(t, 3, snap.MonthlyTrend[5].Orders)
	assert.Equal(t, 1, snap.MonthlyTrend[4].Orders)

	// Old orders still count toward totals even outside every bucket.
	assert.True(t, decimal.NewFromInt(150).Equal(snap.TotalRevenue))
}

func TestAggregator_ProductRankings(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	catalog := []product.Product{
		{ID: "p1", Name: "Shoes"},
		{ID: "p2", Name: "Socks"},
		{ID: "p3", Name: "Bottle"},
	}
	orders := []order.Order{
		makeOrder("u1", 100, order.StatusPending, now,
			order.Item{Name: "Shoes", UnitPrice: decimal.NewFromInt(100), Quantity: 3},
			order.Item{Name: "Socks", UnitPrice: decimal.NewFromInt(10), Quantity: 5},
		),
		// A product since removed from the catalog.
		makeOrder("u2", 60, order.StatusPending, now,
			order.Item{Name: "Discontinued Cap", UnitPrice: decimal.NewFromInt(60), Quantity: 1},
		),
	}

	snap, err := newAggregator(orders, catalog, now).Compute(context.Background())
	require.NoError(t, err)

	// 4 distinct names, under the ranking cut-off of 5.
	require.Len(t, snap.TopByQuantity, 4)
	assert.Equal(t, "Socks", snap.TopByQuantity[0].Name)
	assert.Equal(t, 5, snap.TopByQuantity[0].Quantity)
	assert.Equal(t, "Shoes", snap.TopByQuantity[1].Name)

	assert.Equal(t, "Bottle", snap.LeastByQuantity[0].Name, "zero-sales product ranks least")
	assert.Zero(t, snap.LeastByQuantity[0].Quantity)

	assert.Equal(t, "Shoes", snap.TopByRevenue[0].Name)
	assert.True(t, decimal.NewFromInt(300).Equal(snap.TopByRevenue[0].Revenue))
	assert.Equal(t, "Discontinued Cap", snap.TopByRevenue[1].Name)
}

func TestAggregator_RankingTiesKeepCatalogOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	catalog := []product.Product{
		{ID: "p1", Name: "Alpha"},
		{ID: "p2", Name: "Beta"},
		{ID: "p3", Name: "Gamma"},
	}

	snap, err := newAggregator(nil, catalog, now).Compute(context.Background())
	require.NoError(t, err)

	// All tie at zero; the stable sort keeps catalog order.
	require.Len(t, snap.TopByQuantity, 3)
	assert.Equal(t, "Alpha", snap.TopByQuantity[0].Name)
	assert.Equal(t, "Beta", snap.TopByQuantity[1].Name)
	assert.Equal(t, "Gamma", snap.TopByQuantity[2].Name)
}

func TestAggregator_RankingCutOff(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	catalog := make([]product.Product, 8)
	for i := range catalog {
		catalog[i] = product.Product{ID: string(rune('a' + i)), Name: string(rune('A' + i))}
	}

	snap, err := newAggregator(nil, catalog, now).Compute(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.TopByQuantity, 5)
	assert.Len(t, snap.LeastByQuantity, 5)
	assert.Len(t, snap.TopByRevenue, 5)
}

type failingOrders struct{ err error }

func (f failingOrders) ListAll(_ context.Context) ([]order.Order, error) { return nil, f.err }

type failingCatalog struct{ err error }

func (f failingCatalog) List(_ context.Context) ([]product.Product, error) { return nil, f.err }

func TestAggregator_HealthyStoresComputeCleanly(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{makeOrder("u1", 100, order.StatusPending, now)}
	catalog := []product.Product{{ID: "p1", Name: "Shoes"}}

	snap, err := newAggregator(orders, catalog, now).Compute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.TotalOrders)
}

func TestAggregator_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("orders", func(t *testing.T) {
		a := NewAggregator(failingOrders{err: boom}, staticCatalog(nil))
		snap, err := a.Compute(context.Background())
		require.ErrorIs(t, err, boom)
		assert.Nil(t, snap)
	})

	t.Run("catalog", func(t *testing.T) {
		a := NewAggregator(staticOrders(nil), failingCatalog{err: boom})
		snap, err := a.Compute(context.Background())
		require.ErrorIs(t, err, boom)
		assert.Nil(t, snap)
	})
}
