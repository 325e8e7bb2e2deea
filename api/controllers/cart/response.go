package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/veloramarket/cartsync-backend/internal/cart"
	"github.com/veloramarket/cartsync-backend/pkg/db/models"
	"github.com/veloramarket/cartsync-backend/pkg/types"
)

// CartView is the wire shape of a cart. Money is rendered in decimal
// currency units.
type CartView struct {
	ID           uuid.UUID       `json:"id"`
	Items        []CartItemView  `json:"items"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	TotalItems   int             `json:"totalItems"`
	Version      int64           `json:"version"`
	LastSyncedAt *time.Time      `json:"lastSyncedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type CartItemView struct {
	ItemID      string          `json:"itemId"`
	ProductID   uuid.UUID       `json:"productId"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Variant     *string         `json:"variant,omitempty"`
	SubItems    types.SubItems  `json:"subItems,omitempty"`
}

// SyncResponse is the body of a successful POST /api/v1/cart/sync.
type SyncResponse struct {
	Cart         CartView                  `json:"cart"`
	Conflicts    []cartsvc.Conflict        `json:"conflicts,omitempty"`
	Issues       []cartsvc.ItemIssueReport `json:"issues,omitempty"`
	DroppedItems []string                  `json:"droppedItems,omitempty"`
	SyncedAt     time.Time                 `json:"syncedAt"`
}

// MigrateResponse is the body of a successful POST /api/v1/cart/migrate.
type MigrateResponse struct {
	Cart         CartView                  `json:"cart"`
	MergedItems  []string                  `json:"mergedItems"`
	Issues       []cartsvc.ItemIssueReport `json:"issues,omitempty"`
	DroppedItems []string                  `json:"droppedItems,omitempty"`
}

func newCartView(record *models.Cart) CartView {
	items := make([]CartItemView, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, CartItemView{
			ItemID:      item.ItemID,
			ProductID:   item.ProductID,
			Name:        item.Name,
			Image:       item.Image,
			Category:    item.Category,
			Description: item.Description,
			Price:       types.CentsToDecimal(item.UnitPriceCents),
			Quantity:    item.Quantity,
			Variant:     item.Variant,
			SubItems:    item.SubItems,
		})
	}

	return CartView{
		ID:           record.ID,
		Items:        items,
		TotalPrice:   types.CentsToDecimal(record.TotalCents),
		TotalItems:   record.TotalItems,
		Version:      record.Version,
		LastSyncedAt: record.LastSyncedAt,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func newSyncResponse(result *cartsvc.SyncResult) SyncResponse {
	return SyncResponse{
		Cart:         newCartView(result.Cart),
		Conflicts:    result.Conflicts,
		Issues:       result.Issues,
		DroppedItems: result.Dropped,
		SyncedAt:     result.SyncedAt,
	}
}

func newMigrateResponse(result *cartsvc.MigrationResult) MigrateResponse {
	return MigrateResponse{
		Cart:         newCartView(result.Cart),
		MergedItems:  result.MergedItems,
		Issues:       result.Issues,
		DroppedItems: result.Dropped,
	}
}
