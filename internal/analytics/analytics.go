// Package analytics aggregates orders into the dashboard and report figures
// shown in the admin console. Aggregation is pure over fetched slices;
// repositories only supply the data.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velora/storefront/internal/catalog"
	"github.com/velora/storefront/internal/order"
)

type DashboardStats struct {
	TotalOrders   int    `json:"total_orders"`
	TotalRevenue  string `json:"total_revenue"`
	TotalProducts int    `json:"total_products"`
	PendingOrders int    `json:"pending_orders"`
}

type ProductSales struct {
	Name    string `json:"name"`
	Sales   int    `json:"sales"`
	Revenue string `json:"revenue"`
}

type MonthRevenue struct {
	Month   string `json:"month"`
	Revenue string `json:"revenue"`
	Orders  int    `json:"orders"`
}

type StatusCount struct {
	Status     order.Status `json:"status"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

type Report struct {
	TotalRevenue      string         `json:"total_revenue"`
	TotalOrders       int            `json:"total_orders"`
	AverageOrderValue string         `json:"average_order_value"`
	RevenueGrowth     float64        `json:"revenue_growth"`
	OrdersGrowth      float64        `json:"orders_growth"`
	TopProducts       []ProductSales `json:"top_products"`
	RevenueByMonth    []MonthRevenue `json:"revenue_by_month"`
	OrdersByStatus    []StatusCount  `json:"orders_by_status"`
}

type Service struct {
	orders   order.Repository
	products catalog.Repository
	log      *zap.Logger
	now      func() time.Time
}

func NewService(orders order.Repository, products catalog.Repository, log *zap.Logger) *Service {
	return &Service{orders: orders, products: products, log: log, now: time.Now}
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}

	pending := 0
	for _, o := range orders {
		if o.Status == order.StatusPending {
			pending++
		}
	}
	return &DashboardStats{
		TotalOrders:   len(orders),
		TotalRevenue:  sumRevenue(orders).StringFixed(2),
		TotalProducts: productCount,
		PendingOrders: pending,
	}, nil
}

// Report compares the last `days` days against the preceding window of the
// same length. Item enrichment for top products is best effort: a failed
// fetch logs and yields an empty ranking, not an error.
func (s *Service) Report(ctx context.Context, days int) (*Report, error) {
	if days <= 0 {
		days = 30
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := now.AddDate(0, 0, -days)
	items, err := s.orders.ItemsBetween(ctx, from, now)
	if err != nil {
		s.log.Warn("fetching order items for report failed", zap.Error(err))
		items = nil
	}

	return buildReport(orders, items, now, days), nil
}

func buildReport(orders []order.Order, items []order.Item, now time.Time, days int) *Report {
	from := now.AddDate(0, 0, -days)
	prevFrom := from.AddDate(0, 0, -days)

	window := ordersBetween(orders, from, now)
	previous := ordersBetween(orders, prevFrom, from)

	totalRevenue := sumRevenue(window)
	avg := decimal.Zero
	if len(window) > 0 {
		avg = totalRevenue.DivRound(decimal.NewFromInt(int64(len(window))), 2)
	}

	return &Report{
		TotalRevenue:      totalRevenue.StringFixed(2),
		TotalOrders:       len(window),
		AverageOrderValue: avg.StringFixed(2),
		RevenueGrowth:     growth(totalRevenue, sumRevenue(previous)),
		OrdersGrowth:      countGrowth(len(window), len(previous)),
		TopProducts:       topProducts(items, 5),
		RevenueByMonth:    revenueByMonth(window),
		OrdersByStatus:    ordersByStatus(window),
	}
}

func ordersBetween(orders []order.Order, from, to time.Time) []order.Order {
	var out []order.Order
	for _, o := range orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out
}

func sumRevenue(orders []order.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		amount, _ := decimal.NewFromString(o.TotalAmount)
		total = total.Add(amount)
	}
	return total
}

// growth is the percentage change against the previous value, 0 when there is
// no previous value to compare against.
func growth(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	f, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Float64()
	return f
}

func countGrowth(current, previous int) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func topProducts(items []order.Item, n int) []ProductSales {
	type acc struct {
		sales   int
		revenue decimal.Decimal
	}
	byName := make(map[string]*acc)
	var names []string
	for _, it := range items {
		name := it.ProductName
		if name == "" {
			name = "Unknown Product"
		}
		a, ok := byName[name]
		if !ok {
			a = &acc{revenue: decimal.Zero}
			byName[name] = a
			names = append(names, name)
		}
		price, _ := decimal.NewFromString(it.Price)
		a.sales += it.Quantity
		a.revenue = a.revenue.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	sort.SliceStable(names, func(i, j int) bool {
		return byName[names[i]].sales > byName[names[j]].sales
	})
	if len(names) > n {
		names = names[:n]
	}
	out := make([]ProductSales, 0, len(names))
	for _, name := range names {
		a := byName[name]
		out = append(out, ProductSales{Name: name, Sales: a.sales, Revenue: a.revenue.StringFixed(2)})
	}
	return out
}

func revenueByMonth(orders []order.Order) []MonthRevenue {
	type acc struct {
		revenue decimal.Decimal
		count   int
	}
	byMonth := make(map[string]*acc)
	var keys []time.Time
	for _, o := range orders {
		month := time.Date(o.CreatedAt.Year(), o.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		key := month.Format("Jan 2006")
		a, ok := byMonth[key]
		if !ok {
			a = &acc{revenue: decimal.Zero}
			byMonth[key] = a
			keys = append(keys, month)
		}
		amount, _ := decimal.NewFromString(o.TotalAmount)
		a.revenue = a.revenue.Add(amount)
		a.count++
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]MonthRevenue, 0, len(keys))
	for _, month := range keys {
		key := month.Format("Jan 2006")
		a := byMonth[key]
		out = append(out, MonthRevenue{Month: key, Revenue: a.revenue.StringFixed(2), Orders: a.count})
	}
	return out
}

func ordersByStatus(orders []order.Order) []StatusCount {
	statuses := []order.Status{
		order.StatusPending, order.StatusProcessing, order.StatusShipped,
		order.StatusDelivered, order.StatusCancelled,
	}
	counts := make(map[order.Status]int)
	for _, o := range orders {
		counts[o.Status]++
	}
	out := make([]StatusCount, 0, len(statuses))
	for _, st := range statuses {
		pct := 0.0
		if len(orders) > 0 {
			pct = float64(counts[st]) / float64(len(orders)) * 100
		}
		out = append(out, StatusCount{Status: st, Count: counts[st], Percentage: pct})
	}
	return out
}
