package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veloramarket/cartsync-backend/pkg/types"
)

// CartItem is one line of a cart. ItemID is the stable merge key: the
// product id plus an optional variant discriminator, so the same product in
// two variants occupies two lines. Display fields are snapshots and never
// authoritative for pricing.
type CartItem struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID      `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_line"`
	ItemID         string         `gorm:"column:item_id;not null;uniqueIndex:idx_cart_items_line"`
	ProductID      uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	Name           string         `gorm:"column:name;not null"`
	Image          string         `gorm:"column:image"`
	Category       string         `gorm:"column:category"`
	Description    string         `gorm:"column:description"`
	UnitPriceCents int64          `gorm:"column:unit_price_cents;not null"`
	Quantity       int            `gorm:"column:quantity;not null"`
	Variant        *string        `gorm:"column:variant"`
	SubItems       types.SubItems `gorm:"column:sub_items;type:jsonb;serializer:json"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
