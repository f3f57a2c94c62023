package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
	pkgdb "github.com/insightpulse/scout/pkg/db"
)

type repo struct{}

func Provide() recodomain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, reco *recodomain.Recommendation) (bool, error) {
	err := db.WithContext(ctx).Create(reco).Error
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]recodomain.Recommendation, error) {
	var recos []recodomain.Recommendation
	query := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recos).Error; err != nil {
		return nil, err
	}
	return recos, nil
}

func (r *repo) FeedQuality(ctx context.Context, db *gorm.DB, orgID snowflake.ID, since time.Time) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(AVG(quality_score), 0) AS avg, COUNT(*) AS count
		 FROM bronze_records
		 WHERE org_id = ? AND created_at >= ?`,
		orgID,
		since,
	).Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}
