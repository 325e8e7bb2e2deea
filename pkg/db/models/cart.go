package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veloramarket/cartsync-backend/pkg/enums"
)

// Cart is the authoritative server-held cart for one identity key. The
// (owner_kind, owner_id) pair is unique; version backs optimistic writes.
type Cart struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerKind    enums.CartOwnerKind `gorm:"column:owner_kind;not null;uniqueIndex:idx_carts_owner"`
	OwnerID      string              `gorm:"column:owner_id;not null;uniqueIndex:idx_carts_owner"`
	Version      int64               `gorm:"column:version;not null;default:1"`
	TotalCents   int64               `gorm:"column:total_cents;not null;default:0"`
	TotalItems   int                 `gorm:"column:total_items;not null;default:0"`
	LastSyncedAt *time.Time          `gorm:"column:last_synced_at"`
	Items        []CartItem          `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
