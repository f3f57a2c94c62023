package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Product, error)
	FindBySKU(ctx context.Context, db *gorm.DB, orgID snowflake.ID, sku string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Product, error)
	InsertCategory(ctx context.Context, db *gorm.DB, category *ProductCategory) error
	ListCategories(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]ProductCategory, error)
}
