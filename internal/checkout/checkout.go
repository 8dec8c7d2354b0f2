// Package checkout converts the session cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velora/storefront/internal/cart"
	"github.com/velora/storefront/internal/order"
)

var ErrEmptyCart = errors.New("cart is empty")

// ValidationError reports a contact field that failed validation, so the
// form can surface it next to the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ContactInfo struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
}

func (ci ContactInfo) validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(ci.CustomerName)) < 2 {
		return &ValidationError{Field: "customer_name", Message: "name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(ci.CustomerPhone)) < 10 {
		return &ValidationError{Field: "customer_phone", Message: "phone number must be at least 10 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(ci.CustomerAddress)) < 10 {
		return &ValidationError{Field: "customer_address", Message: "address must be at least 10 characters"}
	}
	return nil
}

type Service struct {
	orders order.Repository
	log    *zap.Logger
}

func NewService(orders order.Repository, log *zap.Logger) *Service {
	return &Service{orders: orders, log: log}
}

// Submit creates a pending order from the cart's current contents: one item
// per line with the snapshot unit price, total fixed to the cart total at
// submission. The order, its items and the stock decrements commit in a
// single repository transaction; nothing persists on failure. On success the
// cart is cleared and the new order id returned.
func (s *Service) Submit(ctx context.Context, c *cart.Cart, info ContactInfo) (string, error) {
	if c.Len() == 0 {
		return "", ErrEmptyCart
	}
	if err := info.validate(); err != nil {
		return "", err
	}

	o := &order.Order{
		ID:              uuid.NewString(),
		CustomerName:    info.CustomerName,
		CustomerPhone:   info.CustomerPhone,
		CustomerAddress: info.CustomerAddress,
		TotalAmount:     c.TotalPrice().StringFixed(2),
		Status:          order.StatusPending,
	}

	lines := c.Items()
	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
	}

	if err := s.orders.Create(ctx, o, items); err != nil {
		s.log.Error("order submission failed",
			zap.String("order_id", o.ID),
			zap.Int("lines", len(items)),
			zap.Error(err))
		return "", err
	}

	c.Clear()
	s.log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.TotalAmount),
		zap.Int("lines", len(items)))
	return o.ID, nil
}
