package catalog

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veloramarket/cartsync-backend/internal/repo"
	"github.com/veloramarket/cartsync-backend/pkg/db/models"
	"github.com/veloramarket/cartsync-backend/pkg/errors"
)

// Repository reads catalog truth from the products table.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Lookup returns the catalog view of one product. A missing row is not an
// error; Exists=false carries that fact to the merge engine.
func (r *Repository) Lookup(ctx context.Context, productID uuid.UUID) (ProductInfo, error) {
	var product models.Product
	err := r.DB(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return ProductInfo{ID: productID}, nil
		}
		return ProductInfo{}, errors.Wrap(errors.CodeDependency, err, "catalog lookup failed")
	}

	return ProductInfo{
		ID:         product.ID,
		Name:       product.Name,
		Image:      product.Image,
		Category:   product.Category,
		PriceCents: product.PriceCents,
		InStock:    product.IsActive && product.StockQty > 0,
		Exists:     true,
	}, nil
}
