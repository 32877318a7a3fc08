package db

import (
	"context"

	"gorm.io/gorm"
)

// WithTransaction runs fn inside a transaction scoped to ctx, committing
// when fn returns nil and rolling back when it returns an error or panics.
func (db *DB) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return db.DB.WithContext(ctx).Transaction(fn)
}
