package cart

import "github.com/veloramarket/cartsync-backend/pkg/db/models"

// Totals holds the derived aggregates of one item set. They are always
// recomputed from the lines, never accepted from a client.
type Totals struct {
	TotalCents int64
	TotalItems int
}

// computeTotals folds an item set into its aggregates. Quantities are
// validated before any item set reaches this point, so no overflow guard is
// needed beyond the per-line quantity cap enforced upstream.
func computeTotals(items []models.CartItem) Totals {
	var totals Totals
	for _, item := range items {
		totals.TotalCents += item.UnitPriceCents * int64(item.Quantity)
		totals.TotalItems += item.Quantity
	}
	return totals
}
