package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, brand *Brand) error
	Update(ctx context.Context, db *gorm.DB, brand *Brand) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Brand, error)
	FindByNormalizedName(ctx context.Context, db *gorm.DB, orgID snowflake.ID, normalized string) (*Brand, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Brand, error)
	InsertAlias(ctx context.Context, db *gorm.DB, alias *BrandAlias) error
	DeleteAliases(ctx context.Context, db *gorm.DB, orgID, brandID snowflake.ID) error
	ListAliases(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]BrandAlias, error)
}
