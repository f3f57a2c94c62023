package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	DailyRevenue(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]DailyRevenueRow, error)
	BrandPerformance(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]BrandPerformanceRow, error)
	CategoryMix(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]CategoryMixRow, error)
	StoreActivity(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]StoreActivityRow, error)
}
