package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent inserts the recommendation unless its (org, kind,
	// subject, window) natural key already exists.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, reco *Recommendation) (bool, error)

	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]Recommendation, error)

	// FeedQuality summarizes bronze quality scores captured since the
	// cutoff: average score and row count.
	FeedQuality(ctx context.Context, db *gorm.DB, orgID snowflake.ID, since time.Time) (avg float64, count int64, err error)
}
