package option

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption customizes a gorm query built by the generic store.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

// WithLimit caps the number of rows returned.
func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit)
	})
}

// WithOffset skips rows before returning results.
func WithOffset(offset int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset)
	})
}

// WithOrder applies an ORDER BY expression.
func WithOrder(order string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

// WithPreload eager-loads an association.
func WithPreload(association string, args ...any) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, args...)
	})
}

// WithLockForUpdate takes SELECT FOR UPDATE SKIP LOCKED on the rows.
func WithLockForUpdate() QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	})
}
