package repository

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	golddomain "github.com/insightpulse/scout/internal/gold/domain"
)

type repo struct{}

func Provide() golddomain.Repository {
	return &repo{}
}

// dayBucket renders the timestamp as a YYYY-MM-DD group key on whatever
// engine backs the connection.
func dayBucket(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "to_char(timestamp, 'YYYY-MM-DD')"
	case "mysql":
		return "date_format(timestamp, '%Y-%m-%d')"
	default:
		return "strftime('%Y-%m-%d', timestamp)"
	}
}

func (r *repo) DailyRevenue(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]golddomain.DailyRevenueRow, error) {
	rows := []golddomain.DailyRevenueRow{}
	err := db.WithContext(ctx).Raw(
		`SELECT `+dayBucket(db)+` AS date,
		        COUNT(*) AS tx_count,
		        COALESCE(SUM(peso_value), 0) AS total_revenue,
		        COALESCE(AVG(peso_value), 0) AS avg_value
		 FROM silver_transactions
		 WHERE org_id = ? AND timestamp >= ? AND timestamp < ?
		 GROUP BY 1
		 ORDER BY 1 ASC`,
		orgID,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) BrandPerformance(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]golddomain.BrandPerformanceRow, error) {
	rows := []golddomain.BrandPerformanceRow{}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(brand_name, 'Unbranded') AS brand_name,
		        COALESCE(SUM(peso_value), 0) AS revenue,
		        COUNT(*) AS tx_count
		 FROM silver_transactions
		 WHERE org_id = ? AND timestamp >= ? AND timestamp < ?
		 GROUP BY 1
		 ORDER BY revenue DESC, brand_name ASC`,
		orgID,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CategoryMix(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]golddomain.CategoryMixRow, error) {
	rows := []golddomain.CategoryMixRow{}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(product_category, 'Uncategorized') AS category,
		        COUNT(*) AS tx_count,
		        COALESCE(SUM(peso_value), 0) AS revenue
		 FROM silver_transactions
		 WHERE org_id = ? AND timestamp >= ? AND timestamp < ?
		 GROUP BY 1
		 ORDER BY tx_count DESC, category ASC`,
		orgID,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StoreActivity folds in memory rather than in SQL: aggregate expressions
// over timestamp columns lose their declared type, which breaks time.Time
// scanning on some drivers.
func (r *repo) StoreActivity(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end time.Time) ([]golddomain.StoreActivityRow, error) {
	var txns []struct {
		StoreID   *string
		PesoValue *float64
		Timestamp time.Time
	}
	err := db.WithContext(ctx).
		Table("silver_transactions").
		Select("store_id", "peso_value", "timestamp").
		Where("org_id = ? AND timestamp >= ? AND timestamp < ?", orgID, start, end).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	byStore := map[string]*golddomain.StoreActivityRow{}
	for i := range txns {
		storeID := "unknown"
		if txns[i].StoreID != nil && *txns[i].StoreID != "" {
			storeID = *txns[i].StoreID
		}
		row, ok := byStore[storeID]
		if !ok {
			row = &golddomain.StoreActivityRow{StoreID: storeID}
			byStore[storeID] = row
		}
		row.TxCount++
		if txns[i].PesoValue != nil {
			row.Revenue += *txns[i].PesoValue
		}
		if txns[i].Timestamp.After(row.LastTransactionAt) {
			row.LastTransactionAt = txns[i].Timestamp
		}
	}

	rows := make([]golddomain.StoreActivityRow, 0, len(byStore))
	for _, row := range byStore {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].LastTransactionAt.Equal(rows[j].LastTransactionAt) {
			return rows[i].LastTransactionAt.After(rows[j].LastTransactionAt)
		}
		return rows[i].StoreID < rows[j].StoreID
	})
	return rows, nil
}
