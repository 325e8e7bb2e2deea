package cart

import (
	"strings"

	"github.com/google/uuid"

	"github.com/veloramarket/cartsync-backend/internal/catalog"
	"github.com/veloramarket/cartsync-backend/pkg/db/models"
	"github.com/veloramarket/cartsync-backend/pkg/enums"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
)

// LineID derives the stable merge key for a product/variant pair. The same
// product in two variants occupies two distinct cart lines.
func LineID(productID uuid.UUID, variant *string) string {
	if variant != nil {
		if v := strings.TrimSpace(*variant); v != "" {
			return productID.String() + "::" + v
		}
	}
	return productID.String()
}

// Conflict describes a quantity disagreement between the client and server
// copies of one line and how it was settled.
type Conflict struct {
	ItemID         string                   `json:"itemId"`
	LocalQuantity  int                      `json:"localQuantity"`
	ServerQuantity int                      `json:"serverQuantity"`
	Resolution     enums.ConflictResolution `json:"resolution"`
}

// ItemIssueReport annotates one line with a catalog validation outcome so
// the client can reconcile its local state instead of silently losing items.
type ItemIssueReport struct {
	ItemID             string          `json:"itemId"`
	ProductID          uuid.UUID       `json:"productId"`
	Issue              enums.ItemIssue `json:"issue"`
	SnapshotPriceCents int64           `json:"snapshotPriceCents,omitempty"`
	CatalogPriceCents  int64           `json:"catalogPriceCents,omitempty"`
}

type mergeOutcome struct {
	items     []models.CartItem
	conflicts []Conflict
	// added holds the line ids carried into the result from the client side
	// only, in client order.
	added []string
}

// reconcile produces the candidate item set for a strategy before catalog
// validation. Server lines keep their stored snapshots; client-only lines
// enter as submitted.
func reconcile(strategy enums.MergeStrategy, server, client []models.CartItem) mergeOutcome {
	switch strategy {
	case enums.MergeStrategyLocal:
		serverIDs := make(map[string]struct{}, len(server))
		for _, item := range server {
			serverIDs[item.ItemID] = struct{}{}
		}
		out := mergeOutcome{items: append([]models.CartItem(nil), client...)}
		for _, item := range client {
			if _, ok := serverIDs[item.ItemID]; !ok {
				out.added = append(out.added, item.ItemID)
			}
		}
		return out

	case enums.MergeStrategyServer:
		return mergeOutcome{items: append([]models.CartItem(nil), server...)}
	}

	clientByID := make(map[string]models.CartItem, len(client))
	for _, item := range client {
		clientByID[item.ItemID] = item
	}

	out := mergeOutcome{}
	seen := make(map[string]struct{}, len(server))
	for _, item := range server {
		seen[item.ItemID] = struct{}{}
		local, ok := clientByID[item.ItemID]
		if !ok || local.Quantity == item.Quantity {
			out.items = append(out.items, item)
			continue
		}
		// Quantity disagreement: keep the larger side so an intentional
		// addition on either device survives.
		resolution := enums.ConflictResolvedServer
		merged := item
		if local.Quantity > item.Quantity {
			resolution = enums.ConflictResolvedLocal
			merged.Quantity = local.Quantity
		}
		out.items = append(out.items, merged)
		out.conflicts = append(out.conflicts, Conflict{
			ItemID:         item.ItemID,
			LocalQuantity:  local.Quantity,
			ServerQuantity: item.Quantity,
			Resolution:     resolution,
		})
	}
	for _, item := range client {
		if _, ok := seen[item.ItemID]; ok {
			continue
		}
		out.items = append(out.items, item)
		out.added = append(out.added, item.ItemID)
	}
	return out
}

// applyCatalog validates a candidate item set against catalog truth. Under
// the merge strategy invalid lines are trimmed and reported; under local or
// server the caller asserted the exact cart, so a line that cannot be sold
// fails the whole operation instead of being dropped silently.
func applyCatalog(strategy enums.MergeStrategy, items []models.CartItem, truth map[uuid.UUID]catalog.ProductInfo) ([]models.CartItem, []ItemIssueReport, []string, error) {
	kept := make([]models.CartItem, 0, len(items))
	var issues []ItemIssueReport
	var dropped []string

	for _, item := range items {
		info := truth[item.ProductID]

		if !info.Exists {
			if strategy != enums.MergeStrategyMerge {
				return nil, nil, nil, pkgerrors.New(pkgerrors.CodeProductNotFound, "product no longer exists").
					WithDetails(map[string]any{"itemId": item.ItemID, "productId": item.ProductID})
			}
			issues = append(issues, ItemIssueReport{
				ItemID:    item.ItemID,
				ProductID: item.ProductID,
				Issue:     enums.ItemIssueProductNotFound,
			})
			dropped = append(dropped, item.ItemID)
			continue
		}

		if !info.InStock {
			if strategy != enums.MergeStrategyMerge {
				return nil, nil, nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "product is out of stock").
					WithDetails(map[string]any{"itemId": item.ItemID, "productId": item.ProductID})
			}
			issues = append(issues, ItemIssueReport{
				ItemID:    item.ItemID,
				ProductID: item.ProductID,
				Issue:     enums.ItemIssueProductOutOfStock,
			})
			dropped = append(dropped, item.ItemID)
			continue
		}

		if item.UnitPriceCents != info.PriceCents {
			issues = append(issues, ItemIssueReport{
				ItemID:             item.ItemID,
				ProductID:          item.ProductID,
				Issue:              enums.ItemIssuePriceMismatch,
				SnapshotPriceCents: item.UnitPriceCents,
				CatalogPriceCents:  info.PriceCents,
			})
			item.UnitPriceCents = info.PriceCents
		}
		if item.Name == "" {
			item.Name = info.Name
		}
		if item.Image == "" {
			item.Image = info.Image
		}
		if item.Category == "" {
			item.Category = info.Category
		}
		kept = append(kept, item)
	}
	return kept, issues, dropped, nil
}
