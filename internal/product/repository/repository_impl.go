package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	productdomain "github.com/insightpulse/scout/internal/product/domain"
)

type repo struct{}

func Provide() productdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *productdomain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, org_id, sku, name, brand_id, category_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OrgID,
		p.SKU,
		p.Name,
		p.BrandID,
		p.CategoryID,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *productdomain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, brand_id = ?, category_id = ?, active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		p.Name,
		p.BrandID,
		p.CategoryID,
		p.Active,
		p.UpdatedAt,
		p.OrgID,
		p.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM products WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*productdomain.Product, error) {
	var product productdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, sku, name, brand_id, category_id, active, created_at, updated_at
		 FROM products WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, orgID snowflake.ID, sku string) (*productdomain.Product, error) {
	var product productdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, sku, name, brand_id, category_id, active, created_at, updated_at
		 FROM products WHERE org_id = ? AND sku = ?`,
		orgID,
		sku,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]productdomain.Product, error) {
	var products []productdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, sku, name, brand_id, category_id, active, created_at, updated_at
		 FROM products WHERE org_id = ? ORDER BY created_at ASC`,
		orgID,
	).Scan(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) InsertCategory(ctx context.Context, db *gorm.DB, c *productdomain.ProductCategory) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO product_categories (id, org_id, name, keywords, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.OrgID,
		c.Name,
		c.Keywords,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]productdomain.ProductCategory, error) {
	var categories []productdomain.ProductCategory
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, keywords, created_at, updated_at
		 FROM product_categories WHERE org_id = ? ORDER BY created_at ASC`,
		orgID,
	).Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
