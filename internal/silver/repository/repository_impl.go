package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
	pkgdb "github.com/insightpulse/scout/pkg/db"
)

type repo struct{}

func Provide() silverdomain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, txn *silverdomain.SilverTransaction) (bool, error) {
	err := db.WithContext(ctx).Create(txn).Error
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) ExistingTransactionIDs(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	var found []string
	err := db.WithContext(ctx).
		Model(&silverdomain.SilverTransaction{}).
		Where("org_id = ? AND transaction_id IN ?", orgID, ids).
		Pluck("transaction_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]silverdomain.SilverTransaction, error) {
	var txns []silverdomain.SilverTransaction
	query := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&silverdomain.SilverTransaction{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}
