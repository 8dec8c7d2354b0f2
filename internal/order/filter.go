package order

import "strings"

// Filter applies the admin console's client-side predicate: the search term
// must appear (case-insensitively) in the customer name, phone or order id,
// and a non-empty statusFilter must match the order's status.
func Filter(orders []Order, searchTerm, statusFilter string) []Order {
	search := strings.ToLower(strings.TrimSpace(searchTerm))
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		if statusFilter != "" && string(o.Status) != statusFilter {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchesSearch(o Order, search string) bool {
	return strings.Contains(strings.ToLower(o.CustomerName), search) ||
		strings.Contains(strings.ToLower(o.CustomerPhone), search) ||
		strings.Contains(strings.ToLower(o.ID), search)
}
