package catalog

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veloramarket/cartsync-backend/pkg/db/models"
	"github.com/veloramarket/cartsync-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	return conn
}

func seedProduct(t *testing.T, db *gorm.DB, product models.Product) models.Product {
	t.Helper()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestRepository_Lookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	active := seedProduct(t, db, models.Product{
		Name:       "Trail Mix",
		Category:   "snacks",
		PriceCents: 799,
		StockQty:   12,
		IsActive:   true,
	})

	info, err := repo.Lookup(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.True(t, info.InStock)
	assert.Equal(t, int64(799), info.PriceCents)
	assert.Equal(t, "Trail Mix", info.Name)
}

func TestRepository_Lookup_OutOfStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	depleted := seedProduct(t, db, models.Product{
		Name:       "Cold Brew",
		PriceCents: 450,
		StockQty:   0,
		IsActive:   true,
	})
	inactive := seedProduct(t, db, models.Product{
		Name:       "Discontinued Tea",
		PriceCents: 300,
		StockQty:   40,
		IsActive:   false,
	})

	for _, id := range []uuid.UUID{depleted.ID, inactive.ID} {
		info, err := repo.Lookup(ctx, id)
		require.NoError(t, err)
		assert.True(t, info.Exists, "product %s", id)
		assert.False(t, info.InStock, "product %s", id)
	}
}

func TestRepository_Lookup_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	info, err := repo.Lookup(context.Background(), uuid.New())
	require.NoError(t, err, "missing product should not be an error")
	assert.False(t, info.Exists)
}

type fakeGateway struct {
	calls    atomic.Int64
	products map[uuid.UUID]ProductInfo
	failing  map[uuid.UUID]error
}

func (f *fakeGateway) Lookup(_ context.Context, productID uuid.UUID) (ProductInfo, error) {
	f.calls.Add(1)
	if err, ok := f.failing[productID]; ok {
		return ProductInfo{}, err
	}
	if info, ok := f.products[productID]; ok {
		return info, nil
	}
	return ProductInfo{ID: productID}, nil
}

func TestLookupAll(t *testing.T) {
	known := uuid.New()
	missing := uuid.New()
	gw := &fakeGateway{
		products: map[uuid.UUID]ProductInfo{
			known: {ID: known, PriceCents: 100, InStock: true, Exists: true},
		},
	}

	results, err := LookupAll(context.Background(), gw, []uuid.UUID{known, missing})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[known].Exists)
	assert.False(t, results[missing].Exists)
	assert.Equal(t, int64(2), gw.calls.Load())
}

func TestLookupAll_AggregatesFailures(t *testing.T) {
	broken1 := uuid.New()
	broken2 := uuid.New()
	gw := &fakeGateway{
		failing: map[uuid.UUID]error{
			broken1: errors.New(errors.CodeDependency, "catalog timeout a"),
			broken2: errors.New(errors.CodeDependency, "catalog timeout b"),
		},
	}

	_, err := LookupAll(context.Background(), gw, []uuid.UUID{broken1, broken2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog timeout a")
	assert.Contains(t, err.Error(), "catalog timeout b")
}

func TestLookupAll_Empty(t *testing.T) {
	results, err := LookupAll(context.Background(), &fakeGateway{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
