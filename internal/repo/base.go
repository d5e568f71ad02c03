package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the gorm handle shared by the domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a gorm connection for embedding in a repository.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection scoped to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
