package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/veloramarket/cartsync-backend/pkg/enums"
)

// SyncAudit records one committed reconciliation. Operators use it to trace
// which lines a sync trimmed or pulled in, beyond what the response body
// reported to the client.
type SyncAudit struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID           `gorm:"column:cart_id;type:uuid;not null;index"`
	Strategy       enums.MergeStrategy `gorm:"column:strategy;not null"`
	ConflictCount  int                 `gorm:"column:conflict_count;not null;default:0"`
	DroppedItemIDs pq.StringArray      `gorm:"column:dropped_item_ids;type:text[]"`
	MergedItemIDs  pq.StringArray      `gorm:"column:merged_item_ids;type:text[]"`
	CommittedAt    time.Time           `gorm:"column:committed_at;not null"`
}
