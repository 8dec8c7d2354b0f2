package order

import (
	"context"

	"go.uber.org/zap"
)

// Flow is the admin order-listing state container: the loaded order list, an
// optionally selected order and its items. It has a single logical writer.
type Flow struct {
	repo Repository
	log  *zap.Logger

	orders   []Order
	selected *Order
	items    []Item
}

func NewFlow(repo Repository, log *zap.Logger) *Flow {
	return &Flow{repo: repo, log: log}
}

// Load refreshes the order list from the repository.
func (f *Flow) Load(ctx context.Context) error {
	orders, err := f.repo.List(ctx)
	if err != nil {
		return err
	}
	f.orders = orders
	return nil
}

func (f *Flow) Orders() []Order {
	out := make([]Order, len(f.orders))
	copy(out, f.orders)
	return out
}

// Filtered applies the search/status predicate to the loaded list.
func (f *Flow) Filtered(searchTerm, statusFilter string) []Order {
	return Filter(f.orders, searchTerm, statusFilter)
}

// Select marks the order as the one being viewed and loads its items.
// Item enrichment is best effort: a fetch failure is logged and the order is
// returned with no items rather than failing the view.
func (f *Flow) Select(ctx context.Context, id string) (*Order, []Item, error) {
	var found *Order
	for i := range f.orders {
		if f.orders[i].ID == id {
			found = &f.orders[i]
			break
		}
	}
	if found == nil {
		o, err := f.repo.GetByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		found = o
	}

	cp := *found
	f.selected = &cp

	items, err := f.repo.GetItems(ctx, id)
	if err != nil {
		f.log.Warn("loading order items failed", zap.String("order_id", id), zap.Error(err))
		items = []Item{}
	}
	f.items = items
	return f.selected, items, nil
}

// Selected returns the currently viewed order and its items, or nil.
func (f *Flow) Selected() (*Order, []Item) {
	return f.selected, f.items
}

// UpdateStatus validates and persists the transition, reloads the list and
// patches the in-memory selection when it matches, avoiding a second fetch.
// On failure no local state changes.
func (f *Flow) UpdateStatus(ctx context.Context, id, newStatus string) error {
	st, err := ParseStatus(newStatus)
	if err != nil {
		return err
	}
	if err := f.repo.UpdateStatus(ctx, id, st); err != nil {
		return err
	}
	if err := f.Load(ctx); err != nil {
		// the transition committed; a stale list is tolerable
		f.log.Warn("refreshing orders after status update failed", zap.Error(err))
	}
	if f.selected != nil && f.selected.ID == id {
		f.selected.Status = st
	}
	return nil
}
