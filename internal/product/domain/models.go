package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// ProductCategory groups products for gold aggregation. Keywords drive
// classification of raw product names during promotion.
type ProductCategory struct {
	ID        snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID   `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_product_categories_org_name,priority:1"`
	Name      string         `json:"name" gorm:"type:text;not null;uniqueIndex:ux_product_categories_org_name,priority:2"`
	Keywords  pq.StringArray `json:"keywords" gorm:"type:text[];not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProductCategory) TableName() string { return "product_categories" }

// Product is a catalog entry, optionally linked to a brand and category.
type Product struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	OrgID      snowflake.ID  `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_products_org_sku,priority:1"`
	SKU        string        `json:"sku" gorm:"column:sku;type:text;not null;uniqueIndex:ux_products_org_sku,priority:2"`
	Name       string        `json:"name" gorm:"type:text;not null"`
	BrandID    *snowflake.ID `json:"brand_id,omitempty" gorm:"column:brand_id"`
	CategoryID *snowflake.ID `json:"category_id,omitempty" gorm:"column:category_id"`
	Active     bool          `json:"active" gorm:"not null;default:true"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }
