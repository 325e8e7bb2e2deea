package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the GORM handle shared by read-side repositories. Write-side
// repositories manage their own transactional handle instead.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB binds the connection to the request context so cancellation propagates
// into the driver.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
