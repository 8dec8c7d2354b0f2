package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/velora/storefront/internal/catalog"
	"github.com/velora/storefront/internal/order"
)

type stubOrderRepo struct {
	orders []order.Order
	items  []order.Item
}

func (s *stubOrderRepo) Create(ctx context.Context, o *order.Order, items []order.Item) error {
	return nil
}
func (s *stubOrderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (s *stubOrderRepo) List(ctx context.Context) ([]order.Order, error) {
	return append([]order.Order(nil), s.orders...), nil
}
func (s *stubOrderRepo) GetItems(ctx context.Context, orderID string) ([]order.Item, error) {
	return nil, nil
}
func (s *stubOrderRepo) ItemsBetween(ctx context.Context, from, to time.Time) ([]order.Item, error) {
	return append([]order.Item(nil), s.items...), nil
}
func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	return nil
}

type stubCatalogRepo struct{ count int }

func (s *stubCatalogRepo) Create(ctx context.Context, p *catalog.Product) error { return nil }
func (s *stubCatalogRepo) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	return nil, catalog.ErrNotFound
}
func (s *stubCatalogRepo) List(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	return nil, nil
}
func (s *stubCatalogRepo) Count(ctx context.Context) (int, error) { return s.count, nil }
func (s *stubCatalogRepo) Update(ctx context.Context, p *catalog.Product, updatePrice bool) error {
	return nil
}
func (s *stubCatalogRepo) Delete(ctx context.Context, id string) (bool, error) { return false, nil }

func at(now time.Time, daysAgo int) time.Time { return now.AddDate(0, 0, -daysAgo) }

func TestDashboard(t *testing.T) {
	now := time.Now()
	repo := &stubOrderRepo{orders: []order.Order{
		{ID: "1", TotalAmount: "25.00", Status: order.StatusPending, CreatedAt: at(now, 1)},
		{ID: "2", TotalAmount: "10.50", Status: order.StatusShipped, CreatedAt: at(now, 2)},
		{ID: "3", TotalAmount: "4.50", Status: order.StatusPending, CreatedAt: at(now, 3)},
	}}
	svc := NewService(repo, &stubCatalogRepo{count: 7}, zap.NewNop())

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.TotalOrders != 3 || stats.TotalRevenue != "40.00" ||
		stats.TotalProducts != 7 || stats.PendingOrders != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestBuildReport_GrowthAndAverages(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{
		// current 30-day window: 150.00 over 2 orders
		{ID: "1", TotalAmount: "100.00", Status: order.StatusPending, CreatedAt: at(now, 5)},
		{ID: "2", TotalAmount: "50.00", Status: order.StatusDelivered, CreatedAt: at(now, 10)},
		// previous window: 100.00 over 1 order
		{ID: "3", TotalAmount: "100.00", Status: order.StatusDelivered, CreatedAt: at(now, 40)},
		// outside both windows
		{ID: "4", TotalAmount: "999.00", Status: order.StatusDelivered, CreatedAt: at(now, 90)},
	}

	r := buildReport(orders, nil, now, 30)

	if r.TotalOrders != 2 || r.TotalRevenue != "150.00" {
		t.Fatalf("window totals wrong: %+v", r)
	}
	if r.AverageOrderValue != "75.00" {
		t.Fatalf("avg=%s, want 75.00", r.AverageOrderValue)
	}
	if math.Abs(r.RevenueGrowth-50.0) > 1e-9 {
		t.Fatalf("revenue growth=%v, want 50", r.RevenueGrowth)
	}
	if math.Abs(r.OrdersGrowth-100.0) > 1e-9 {
		t.Fatalf("orders growth=%v, want 100", r.OrdersGrowth)
	}
}

func TestBuildReport_EmptyPreviousWindow(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{
		{ID: "1", TotalAmount: "10.00", Status: order.StatusPending, CreatedAt: at(now, 1)},
	}
	r := buildReport(orders, nil, now, 30)
	if r.RevenueGrowth != 0 || r.OrdersGrowth != 0 {
		t.Fatalf("growth must be 0 with no previous data: %+v", r)
	}
}

func TestBuildReport_TopProducts(t *testing.T) {
	now := time.Now()
	items := []order.Item{
		{ProductName: "Mug", Quantity: 3, Price: "5.00"},
		{ProductName: "Shirt", Quantity: 1, Price: "20.00"},
		{ProductName: "Mug", Quantity: 2, Price: "5.00"},
		{ProductName: "", Quantity: 4, Price: "1.00"},
	}
	r := buildReport(nil, items, now, 30)

	if len(r.TopProducts) != 3 {
		t.Fatalf("top products=%d, want 3", len(r.TopProducts))
	}
	if r.TopProducts[0].Name != "Mug" || r.TopProducts[0].Sales != 5 || r.TopProducts[0].Revenue != "25.00" {
		t.Fatalf("top product wrong: %+v", r.TopProducts[0])
	}
	if r.TopProducts[1].Name != "Unknown Product" {
		t.Fatalf("nameless items must rank as Unknown Product: %+v", r.TopProducts)
	}
}

func TestBuildReport_RevenueByMonthChronological(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	orders := []order.Order{
		{ID: "1", TotalAmount: "10.00", Status: order.StatusPending, CreatedAt: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "2", TotalAmount: "20.00", Status: order.StatusPending, CreatedAt: time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)},
		{ID: "3", TotalAmount: "5.00", Status: order.StatusPending, CreatedAt: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)},
	}
	r := buildReport(orders, nil, now, 60)

	if len(r.RevenueByMonth) != 2 {
		t.Fatalf("months=%d, want 2", len(r.RevenueByMonth))
	}
	if r.RevenueByMonth[0].Month != "Feb 2026" || r.RevenueByMonth[0].Revenue != "20.00" {
		t.Fatalf("first month wrong: %+v", r.RevenueByMonth[0])
	}
	if r.RevenueByMonth[1].Month != "Mar 2026" || r.RevenueByMonth[1].Revenue != "15.00" || r.RevenueByMonth[1].Orders != 2 {
		t.Fatalf("second month wrong: %+v", r.RevenueByMonth[1])
	}
}

func TestBuildReport_OrdersByStatus(t *testing.T) {
	now := time.Now()
	orders := []order.Order{
		{ID: "1", TotalAmount: "1.00", Status: order.StatusPending, CreatedAt: at(now, 1)},
		{ID: "2", TotalAmount: "1.00", Status: order.StatusPending, CreatedAt: at(now, 2)},
		{ID: "3", TotalAmount: "1.00", Status: order.StatusShipped, CreatedAt: at(now, 3)},
		{ID: "4", TotalAmount: "1.00", Status: order.StatusCancelled, CreatedAt: at(now, 4)},
	}
	r := buildReport(orders, nil, now, 30)

	if len(r.OrdersByStatus) != 5 {
		t.Fatalf("all five statuses must be reported, got %d", len(r.OrdersByStatus))
	}
	byStatus := map[order.Status]StatusCount{}
	for _, sc := range r.OrdersByStatus {
		byStatus[sc.Status] = sc
	}
	if sc := byStatus[order.StatusPending]; sc.Count != 2 || math.Abs(sc.Percentage-50.0) > 1e-9 {
		t.Fatalf("pending: %+v", sc)
	}
	if sc := byStatus[order.StatusProcessing]; sc.Count != 0 || sc.Percentage != 0 {
		t.Fatalf("processing: %+v", sc)
	}
}
