package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
)

type repo struct{}

func Provide() landingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *landingdomain.RawIngestRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) ListPending(ctx context.Context, db *gorm.DB, orgID snowflake.ID, afterID snowflake.ID, limit int) ([]landingdomain.RawIngestRecord, error) {
	var records []landingdomain.RawIngestRecord
	query := db.WithContext(ctx).
		Where("org_id = ? AND payload IS NOT NULL AND id > ?", orgID, afterID).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) DrainAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM landing_records WHERE org_id = ?`,
		orgID,
	).Error
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&landingdomain.RawIngestRecord{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}
