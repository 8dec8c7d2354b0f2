package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/velora/storefront/internal/cart"
	"github.com/velora/storefront/internal/catalog"
	"github.com/velora/storefront/internal/order"
)

// stubRepo implements order.Repository in memory, recording writes.
type stubRepo struct {
	createErr error
	lastOrder *order.Order
	lastItems []order.Item
	creates   int
}

func (s *stubRepo) Create(ctx context.Context, o *order.Order, items []order.Item) error {
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	cp := *o
	s.lastOrder = &cp
	s.lastItems = append([]order.Item(nil), items...)
	return nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (s *stubRepo) List(ctx context.Context) ([]order.Order, error) { return nil, nil }
func (s *stubRepo) GetItems(ctx context.Context, orderID string) ([]order.Item, error) {
	return nil, nil
}
func (s *stubRepo) ItemsBetween(ctx context.Context, from, to time.Time) ([]order.Item, error) {
	return nil, nil
}
func (s *stubRepo) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	return nil
}

func validContact() ContactInfo {
	return ContactInfo{
		CustomerName:    "Jane Doe",
		CustomerPhone:   "5551234567",
		CustomerAddress: "1 Long Street, Springfield",
	}
}

func cartWith(t *testing.T, lines ...cart.Line) *cart.Cart {
	t.Helper()
	c := cart.New()
	for _, l := range lines {
		c.AddItem(l.Product, l.Quantity)
	}
	return c
}

func prod(id, price string, stock int) catalog.Product {
	return catalog.Product{ID: id, Name: "P" + id, Price: price, StockQuantity: stock, IsActive: true}
}

func TestSubmit_EmptyCart(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, zap.NewNop())

	_, err := svc.Submit(context.Background(), cart.New(), validContact())
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err=%v, want ErrEmptyCart", err)
	}
	if repo.creates != 0 {
		t.Fatalf("empty-cart checkout must not write; creates=%d", repo.creates)
	}
}

func TestSubmit_ContactValidation(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, zap.NewNop())
	c := cartWith(t, cart.Line{Product: prod("a", "10.00", 5), Quantity: 1})

	cases := []struct {
		name  string
		info  ContactInfo
		field string
	}{
		{"short name", ContactInfo{CustomerName: "J", CustomerPhone: "5551234567", CustomerAddress: "1 Long Street, Springfield"}, "customer_name"},
		{"short phone", ContactInfo{CustomerName: "Jane Doe", CustomerPhone: "555", CustomerAddress: "1 Long Street, Springfield"}, "customer_phone"},
		{"short address", ContactInfo{CustomerName: "Jane Doe", CustomerPhone: "5551234567", CustomerAddress: "short"}, "customer_address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), c, tc.info)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err=%v, want ValidationError", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("field=%s, want %s", vErr.Field, tc.field)
			}
		})
	}
	if repo.creates != 0 {
		t.Fatalf("validation failures must not write; creates=%d", repo.creates)
	}
	if c.Len() != 1 {
		t.Fatalf("cart must be untouched after rejected submission")
	}
}

func TestSubmit_HappyPath(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, zap.NewNop())

	// cart = 2 x 10.00 + 1 x 5.00 => total 25.00
	c := cartWith(t,
		cart.Line{Product: prod("a", "10.00", 5), Quantity: 2},
		cart.Line{Product: prod("b", "5.00", 5), Quantity: 1},
	)

	id, err := svc.Submit(context.Background(), c, validContact())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id == "" || repo.lastOrder == nil || repo.lastOrder.ID != id {
		t.Fatalf("order id not returned/persisted: id=%q order=%+v", id, repo.lastOrder)
	}
	if repo.lastOrder.Status != order.StatusPending {
		t.Fatalf("status=%s, want pending", repo.lastOrder.Status)
	}
	if repo.lastOrder.TotalAmount != "25.00" {
		t.Fatalf("total_amount=%s, want 25.00", repo.lastOrder.TotalAmount)
	}
	if len(repo.lastItems) != 2 {
		t.Fatalf("items=%d, want 2 (one per cart line)", len(repo.lastItems))
	}
	byProduct := map[string]order.Item{}
	for _, it := range repo.lastItems {
		if it.OrderID != id {
			t.Fatalf("item order_id=%s, want %s", it.OrderID, id)
		}
		byProduct[it.ProductID] = it
	}
	if it := byProduct["a"]; it.Quantity != 2 || it.Price != "10.00" {
		t.Fatalf("item a: %+v, want qty=2 price=10.00 (snapshot)", it)
	}
	if it := byProduct["b"]; it.Quantity != 1 || it.Price != "5.00" {
		t.Fatalf("item b: %+v, want qty=1 price=5.00 (snapshot)", it)
	}
	if c.Len() != 0 || c.TotalItems() != 0 {
		t.Fatalf("cart must be empty after successful checkout")
	}
}

func TestSubmit_RepoFailureKeepsCart(t *testing.T) {
	repo := &stubRepo{createErr: order.ErrInsufficientStock}
	svc := NewService(repo, zap.NewNop())
	c := cartWith(t, cart.Line{Product: prod("a", "10.00", 5), Quantity: 2})

	_, err := svc.Submit(context.Background(), c, validContact())
	if !errors.Is(err, order.ErrInsufficientStock) {
		t.Fatalf("err=%v, want ErrInsufficientStock", err)
	}
	if c.Len() != 1 {
		t.Fatalf("cart must survive a failed submission so the user can retry")
	}
}
