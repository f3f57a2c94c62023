package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	branddomain "github.com/insightpulse/scout/internal/brand/domain"
)

type repo struct{}

func Provide() branddomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, b *branddomain.Brand) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO brands (id, org_id, name, normalized_name, slug, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.OrgID,
		b.Name,
		b.NormalizedName,
		b.Slug,
		b.Active,
		b.CreatedAt,
		b.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, b *branddomain.Brand) error {
	return db.WithContext(ctx).Exec(
		`UPDATE brands
		 SET name = ?, normalized_name = ?, slug = ?, active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		b.Name,
		b.NormalizedName,
		b.Slug,
		b.Active,
		b.UpdatedAt,
		b.OrgID,
		b.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM brands WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*branddomain.Brand, error) {
	var brand branddomain.Brand
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, normalized_name, slug, active, created_at, updated_at
		 FROM brands WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&brand).Error
	if err != nil {
		return nil, err
	}
	if brand.ID == 0 {
		return nil, nil
	}
	return &brand, nil
}

func (r *repo) FindByNormalizedName(ctx context.Context, db *gorm.DB, orgID snowflake.ID, normalized string) (*branddomain.Brand, error) {
	var brand branddomain.Brand
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, normalized_name, slug, active, created_at, updated_at
		 FROM brands WHERE org_id = ? AND normalized_name = ?`,
		orgID,
		normalized,
	).Scan(&brand).Error
	if err != nil {
		return nil, err
	}
	if brand.ID == 0 {
		return nil, nil
	}
	return &brand, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]branddomain.Brand, error) {
	var brands []branddomain.Brand
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, normalized_name, slug, active, created_at, updated_at
		 FROM brands WHERE org_id = ? ORDER BY created_at ASC`,
		orgID,
	).Scan(&brands).Error
	if err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *repo) InsertAlias(ctx context.Context, db *gorm.DB, alias *branddomain.BrandAlias) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO brand_aliases (id, org_id, brand_id, alias, normalized_alias, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		alias.ID,
		alias.OrgID,
		alias.BrandID,
		alias.Alias,
		alias.NormalizedAlias,
		alias.CreatedAt,
	).Error
}

func (r *repo) DeleteAliases(ctx context.Context, db *gorm.DB, orgID, brandID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM brand_aliases WHERE org_id = ? AND brand_id = ?`,
		orgID,
		brandID,
	).Error
}

func (r *repo) ListAliases(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]branddomain.BrandAlias, error) {
	var aliases []branddomain.BrandAlias
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, brand_id, alias, normalized_alias, created_at
		 FROM brand_aliases WHERE org_id = ? ORDER BY created_at ASC`,
		orgID,
	).Scan(&aliases).Error
	if err != nil {
		return nil, err
	}
	return aliases, nil
}
