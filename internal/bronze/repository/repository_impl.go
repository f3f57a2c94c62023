package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	pkgdb "github.com/insightpulse/scout/pkg/db"
)

type repo struct{}

func Provide() bronzedomain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, record *bronzedomain.BronzeRecord) (bool, error) {
	err := db.WithContext(ctx).Create(record).Error
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]bronzedomain.BronzeRecord, error) {
	var records []bronzedomain.BronzeRecord
	query := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) ListAfter(ctx context.Context, db *gorm.DB, orgID snowflake.ID, afterID snowflake.ID, limit int) ([]bronzedomain.BronzeRecord, error) {
	var records []bronzedomain.BronzeRecord
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

func (r *repo) Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&bronzedomain.BronzeRecord{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}
