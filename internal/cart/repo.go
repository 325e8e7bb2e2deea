package cart

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veloramarket/cartsync-backend/internal/identity"
	"github.com/veloramarket/cartsync-backend/pkg/db/models"
)

// ErrVersionConflict signals a stale optimistic write. Callers re-read and
// retry the whole reconciliation.
var ErrVersionConflict = stderrors.New("cart version conflict")

// VersionedUpdate carries the full replacement state for one conditional
// cart write.
type VersionedUpdate struct {
	Items        []models.CartItem
	TotalCents   int64
	TotalItems   int
	LastSyncedAt time.Time
}

// Repository persists cart aggregates.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByKey loads the cart owned by the given identity, items included.
// Absence is not an error; callers decide whether to lazily create.
func (r *Repository) FindByKey(ctx context.Context, key identity.CartKey) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("owner_kind = ? AND owner_id = ?", key.Kind, key.ID).
		First(&record).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create inserts an empty cart for the identity. The owner unique index
// rejects a second record for the same key; callers treat that as a lost
// race and re-read.
func (r *Repository) Create(ctx context.Context, key identity.CartKey) (*models.Cart, error) {
	record := &models.Cart{
		ID:        uuid.New(),
		OwnerKind: key.Kind,
		OwnerID:   key.ID,
		Version:   1,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateVersioned commits a reconciled cart only if the stored version still
// matches what the caller read. A stale version yields ErrVersionConflict
// with nothing written.
func (r *Repository) UpdateVersioned(ctx context.Context, cartID uuid.UUID, expectedVersion int64, update VersionedUpdate) error {
	tx := r.db.WithContext(ctx)

	// updated_at is pinned to the same instant as last_synced_at so a client
	// replaying the returned syncedAt compares equal to the stored row and
	// takes the no-write path.
	res := tx.Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, expectedVersion).
		Updates(map[string]any{
			"version":        expectedVersion + 1,
			"total_cents":    update.TotalCents,
			"total_items":    update.TotalItems,
			"last_synced_at": update.LastSyncedAt,
			"updated_at":     update.LastSyncedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}

	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(update.Items) == 0 {
		return nil
	}
	items := make([]models.CartItem, len(update.Items))
	copy(items, update.Items)
	for i := range items {
		items[i].ID = uuid.New()
		items[i].CartID = cartID
	}
	return tx.Create(&items).Error
}

// Delete removes the cart and its items. Deleting an absent cart is a no-op.
func (r *Repository) Delete(ctx context.Context, key identity.CartKey) error {
	tx := r.db.WithContext(ctx)
	var record models.Cart
	err := tx.Where("owner_kind = ? AND owner_id = ?", key.Kind, key.ID).First(&record).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Cart{}, "id = ?", record.ID).Error
}

// RecordAudit writes one reconciliation audit row.
func (r *Repository) RecordAudit(ctx context.Context, audit *models.SyncAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(audit).Error
}
