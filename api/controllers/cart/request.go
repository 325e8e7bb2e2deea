package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/veloramarket/cartsync-backend/internal/cart"
	"github.com/veloramarket/cartsync-backend/pkg/enums"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
	"github.com/veloramarket/cartsync-backend/pkg/types"
)

// ItemPayload is one client-held cart line on the wire. Prices travel as
// decimal currency units and are converted to cents at this boundary.
type ItemPayload struct {
	ProductID   uuid.UUID        `json:"productId" validate:"required"`
	Quantity    int              `json:"quantity"`
	Price       decimal.Decimal  `json:"price"`
	Name        string           `json:"name" validate:"max=255"`
	Image       string           `json:"image" validate:"max=1024"`
	Category    string           `json:"category" validate:"max=255"`
	Description string           `json:"description" validate:"max=4096"`
	Variant     *string          `json:"variant,omitempty"`
	SubItems    []SubItemPayload `json:"subItems,omitempty" validate:"dive"`
}

// SubItemPayload mirrors one component of a composite line.
type SubItemPayload struct {
	ID    string          `json:"id" validate:"required,max=128"`
	Name  string          `json:"name" validate:"max=255"`
	Image string          `json:"image" validate:"max=1024"`
	Price decimal.Decimal `json:"price"`
}

// SyncRequest is the body of POST /api/v1/cart/sync.
type SyncRequest struct {
	LocalCart     []ItemPayload `json:"localCart" validate:"dive"`
	LastSyncedAt  *time.Time    `json:"lastSyncedAt,omitempty"`
	MergeStrategy string        `json:"mergeStrategy,omitempty" validate:"omitempty,oneof=local server merge"`
}

// MigrateRequest is the body of POST /api/v1/cart/migrate. The guest cart
// listed here only backs sessions that never persisted server-side; the
// stored guest record wins when both exist.
type MigrateRequest struct {
	GuestCart []ItemPayload `json:"guestCart" validate:"dive"`
}

func toItemInputs(payloads []ItemPayload) ([]cartsvc.ItemInput, error) {
	inputs := make([]cartsvc.ItemInput, 0, len(payloads))
	for _, payload := range payloads {
		priceCents, err := types.DecimalToCents(payload.Price)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item price").
				WithDetails(map[string]any{"productId": payload.ProductID})
		}

		subItems := make(types.SubItems, 0, len(payload.SubItems))
		for _, sub := range payload.SubItems {
			subCents, err := types.DecimalToCents(sub.Price)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sub-item price").
					WithDetails(map[string]any{"productId": payload.ProductID, "subItemId": sub.ID})
			}
			subItems = append(subItems, types.SubItem{
				ID:         sub.ID,
				Name:       sub.Name,
				Image:      sub.Image,
				PriceCents: subCents,
			})
		}
		if len(subItems) == 0 {
			subItems = nil
		}

		inputs = append(inputs, cartsvc.ItemInput{
			ProductID:      payload.ProductID,
			Quantity:       payload.Quantity,
			UnitPriceCents: priceCents,
			Name:           payload.Name,
			Image:          payload.Image,
			Category:       payload.Category,
			Description:    payload.Description,
			Variant:        payload.Variant,
			SubItems:       subItems,
		})
	}
	return inputs, nil
}

func toSyncInput(payload SyncRequest) (cartsvc.SyncInput, error) {
	strategy, err := enums.ParseMergeStrategy(payload.MergeStrategy)
	if err != nil {
		return cartsvc.SyncInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid merge strategy")
	}
	items, err := toItemInputs(payload.LocalCart)
	if err != nil {
		return cartsvc.SyncInput{}, err
	}
	return cartsvc.SyncInput{
		Items:        items,
		LastSyncedAt: payload.LastSyncedAt,
		Strategy:     strategy,
	}, nil
}
