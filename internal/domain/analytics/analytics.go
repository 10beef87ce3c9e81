package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/domain/order"
)

// TrendPoint is one time bucket of the revenue trend.
type TrendPoint struct {
	Label   string          `json:"label"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductStat accumulates demand per product name across every order item.
type ProductStat struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Snapshot is the full analytics result for one aggregation pass.
//
// TotalRevenue sums TotalPrice over every order regardless of status:
// revenue is recognized at order creation, not at delivery. The completed
// bucket covers orders in Delivered or Shipped; everything else counts as
// pending.
type Snapshot struct {
	TotalOrders      int                  `json:"total_orders"`
	TotalRevenue     decimal.Decimal      `json:"total_revenue"`
	TotalCustomers   int                  `json:"total_customers"`
	StatusCounts     map[order.Status]int `json:"status_counts"`
	CompletedRevenue decimal.Decimal      `json:"completed_revenue"`
	PendingRevenue   decimal.Decimal      `json:"pending_revenue"`
	DailyTrend       []TrendPoint         `json:"daily_trend"`
	MonthlyTrend     []TrendPoint         `json:"monthly_trend"`
	TopByQuantity    []ProductStat        `json:"top_by_quantity"`
	LeastByQuantity  []ProductStat        `json:"least_by_quantity"`
	TopByRevenue     []ProductStat        `json:"top_by_revenue"`
}
