package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/retailcore/storefront/internal/domain/order"
	"github.com/retailcore/storefront/internal/domain/product"
)

const (
	dailyBuckets   = 7
	monthlyBuckets = 6
	rankingSize    = 5

	dayLabel   = "2006-01-02"
	monthLabel = "Jan 2006"
)

// OrderLister is the slice of the order store the aggregator reads.
type OrderLister interface {
	ListAll(ctx context.Context) ([]order.Order, error)
}

// CatalogLister is the slice of the product catalog the aggregator reads.
type CatalogLister interface {
	List(ctx context.Context) ([]product.Product, error)
}

// Aggregator computes sales and demand aggregates from a full scan of the
// order store. It holds no state between calls and takes no locks, so it is
// safe to run concurrently with any other operation; results may trail
// in-flight writes by one scan.
type Aggregator struct {
	orders  OrderLister
	catalog CatalogLister
	now     func() time.Time
}

// NewAggregator creates an Aggregator over the given order store and catalog.
func NewAggregator(orders OrderLister, catalog CatalogLister) *Aggregator {
	return &Aggregator{orders: orders, catalog: catalog, now: time.Now}
}

// Compute builds a Snapshot from every order in the store. The order scan
// and the catalog fetch run concurrently; everything else is a single fold
// over the order list.
func (a *Aggregator) Compute(ctx context.Context) (*Snapshot, error) {
	var (
		allOrders []order.Order
		catalog   []product.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if allOrders, err = a.orders.ListAll(gctx); err != nil {
			return errors.Wrap(err, "list orders")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if catalog, err = a.catalog.List(gctx); err != nil {
			return errors.Wrap(err, "list catalog")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := a.now()
	snap := &Snapshot{
		TotalOrders:      len(allOrders),
		TotalRevenue:     decimal.Zero,
		CompletedRevenue: decimal.Zero,
		PendingRevenue:   decimal.Zero,
		StatusCounts:     make(map[order.Status]int, len(order.Statuses)),
		DailyTrend:       makeTrend(now, dailyBuckets, dayLabel, daysAgo),
		MonthlyTrend:     makeTrend(now, monthlyBuckets, monthLabel, monthsAgo),
	}

	// Seed the per-product accumulator from the full catalog so zero-sales
	// products still rank with zero counts. Order items whose names no
	// longer match a catalog entry (deleted products) get ad-hoc entries in
	// encounter order.
	stats := make([]ProductStat, 0, len(catalog))
	index := make(map[string]int, len(catalog))
	for _, p := range catalog {
		index[p.Name] = len(stats)
		stats = append(stats, ProductStat{Name: p.Name, Revenue: decimal.Zero})
	}

	dayIdx := trendIndex(now, dailyBuckets, dayLabel, daysAgo)
	monthIdx := trendIndex(now, monthlyBuckets, monthLabel, monthsAgo)

	customers := make(map[string]struct{})

	for _, o := range allOrders {
		snap.TotalRevenue = snap.TotalRevenue.Add(o.TotalPrice)
		snap.StatusCounts[o.Status]++
		customers[o.UserID] = struct{}{}

		if o.Status == order.StatusDelivered || o.Status == order.StatusShipped {
			snap.CompletedRevenue = snap.CompletedRevenue.Add(o.TotalPrice)
		} else {
			snap.PendingRevenue = snap.PendingRevenue.Add(o.TotalPrice)
		}

		if i, ok := dayIdx[o.CreatedAt.Format(dayLabel)]; ok {
			snap.DailyTrend[i].Orders++
			snap.DailyTrend[i].Revenue = snap.DailyTrend[i].Revenue.Add(o.TotalPrice)
		}
		if i, ok := monthIdx[o.CreatedAt.Format(monthLabel)]; ok {
			snap.MonthlyTrend[i].Orders++
			snap.MonthlyTrend[i].Revenue = snap.MonthlyTrend[i].Revenue.Add(o.TotalPrice)
		}

		for _, item := range o.Items {
			i, ok := index[item.Name]
			if !ok {
				i = len(stats)
				index[item.Name] = i
				stats = append(stats, ProductStat{Name: item.Name, Revenue: decimal.Zero})
			}
			stats[i].Quantity += item.Quantity
			line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			stats[i].Revenue = stats[i].Revenue.Add(line)
		}
	}

	snap.TotalCustomers = len(customers)
	snap.TopByQuantity = rank(stats, func(a, b ProductStat) bool { return a.Quantity > b.Quantity })
	snap.LeastByQuantity = rank(stats, func(a, b ProductStat) bool { return a.Quantity < b.Quantity })
	snap.TopByRevenue = rank(stats, func(a, b ProductStat) bool { return a.Revenue.GreaterThan(b.Revenue) })

	return snap, nil
}

// rank returns the first rankingSize entries of stats under a stable sort,
// so ties keep their encounter order.
func rank(stats []ProductStat, less func(a, b ProductStat) bool) []ProductStat {
	sorted := make([]ProductStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	if len(sorted) > rankingSize {
		sorted = sorted[:rankingSize]
	}
	return sorted
}

func daysAgo(now time.Time, n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func monthsAgo(now time.Time, n int) time.Time {
	// Anchor to the first of the month so AddDate cannot skip short months.
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -n, 0)
}

// makeTrend builds empty buckets from oldest to newest, ending at now.
func makeTrend(now time.Time, n int, layout string, back func(time.Time, int) time.Time) []TrendPoint {
	points := make([]TrendPoint, n)
	for i := 0; i < n; i++ {
		points[i] = TrendPoint{
			Label:   back(now, n-1-i).Format(layout),
			Revenue: decimal.Zero,
		}
	}
	return points
}

// trendIndex maps a bucket label to its position in the trend slice.
func trendIndex(now time.Time, n int, layout string, back func(time.Time, int) time.Time) map[string]int {
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		idx[back(now, n-1-i).Format(layout)] = i
	}
	return idx
}
