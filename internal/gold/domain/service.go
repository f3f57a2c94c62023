package domain

import (
	"context"
	"errors"
	"time"
)

// Gold is a read-only layer: every result here is computed from the silver
// store at query time. An empty silver store yields empty slices, never an
// error.
type Service interface {
	DailyRevenue(ctx context.Context, query Query) ([]DailyRevenueRow, error)
	BrandPerformance(ctx context.Context, query Query) ([]BrandPerformanceRow, error)
	CategoryMix(ctx context.Context, query Query) ([]CategoryMixRow, error)
	StoreActivity(ctx context.Context, query Query) ([]StoreActivityRow, error)
}

// Query bounds an aggregate to a closed time window. Zero values select the
// default window ending now.
type Query struct {
	Start time.Time
	End   time.Time
}

type DailyRevenueRow struct {
	Date         string  `json:"date"`
	TxCount      int64   `json:"tx_count"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgValue     float64 `json:"avg_value"`
}

type BrandPerformanceRow struct {
	BrandName string  `json:"brand_name"`
	Revenue   float64 `json:"revenue"`
	TxCount   int64   `json:"tx_count"`
	Share     float64 `json:"share"`
}

type CategoryMixRow struct {
	Category string  `json:"category"`
	TxCount  int64   `json:"tx_count"`
	Revenue  float64 `json:"revenue"`
	Share    float64 `json:"share"`
}

type StoreActivityRow struct {
	StoreID           string    `json:"store_id"`
	TxCount           int64     `json:"tx_count"`
	Revenue           float64   `json:"revenue"`
	LastTransactionAt time.Time `json:"last_transaction_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidTimeRange    = errors.New("invalid_time_range")
)
