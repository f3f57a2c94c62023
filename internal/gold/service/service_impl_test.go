package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/auditcontext"
	"github.com/insightpulse/scout/internal/clock"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	goldrepo "github.com/insightpulse/scout/internal/gold/repository"
	"github.com/insightpulse/scout/internal/orgcontext"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
)

type allowAll struct{}

func (allowAll) Authorize(_ context.Context, _, _, _, _ string) error { return nil }

type fixture struct {
	svc   golddomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
	ctx   context.Context
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&silverdomain.SilverTransaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	ctx = auditcontext.WithActor(ctx, "system", "")

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  goldrepo.Provide(),
		Authz: allowAll{},
	})

	return &fixture{svc: svc, db: db, node: node, orgID: orgID, ctx: ctx, clock: fakeClock}
}

func (f *fixture) addTransaction(t *testing.T, txID string, ts time.Time, peso *float64, brand, category, store *string) {
	t.Helper()
	require.NoError(t, f.db.Create(&silverdomain.SilverTransaction{
		ID:              f.node.Generate(),
		OrgID:           f.orgID,
		TransactionID:   txID,
		StoreID:         store,
		Timestamp:       ts,
		BrandName:       brand,
		PesoValue:       peso,
		Region:          "NCR",
		DeviceID:        "SCOUTPI-0002",
		ProductCategory: category,
		CreatedAt:       ts,
	}).Error)
}

func ptr[T any](v T) *T { return &v }

func TestDailyRevenueAggregatesByDay(t *testing.T) {
	f := newFixture(t)
	day1 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	f.addTransaction(t, "t1", day1, ptr(100.0), nil, nil, nil)
	f.addTransaction(t, "t2", day1.Add(time.Hour), ptr(50.0), nil, nil, nil)
	f.addTransaction(t, "t3", day2, nil, nil, nil, nil)

	rows, err := f.svc.DailyRevenue(f.ctx, golddomain.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-06-01", rows[0].Date)
	assert.Equal(t, int64(2), rows[0].TxCount)
	assert.Equal(t, 150.0, rows[0].TotalRevenue)
	assert.Equal(t, 75.0, rows[0].AvgValue)

	assert.Equal(t, "2024-06-02", rows[1].Date)
	assert.Equal(t, int64(1), rows[1].TxCount)
	assert.Zero(t, rows[1].TotalRevenue)
}

func TestBrandPerformanceComputesShares(t *testing.T) {
	f := newFixture(t)
	ts := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	f.addTransaction(t, "t1", ts, ptr(75.0), ptr("Coca-Cola"), nil, nil)
	f.addTransaction(t, "t2", ts, ptr(25.0), ptr("Lucky Me"), nil, nil)

	rows, err := f.svc.BrandPerformance(f.ctx, golddomain.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Coca-Cola", rows[0].BrandName)
	assert.Equal(t, 0.75, rows[0].Share)
	assert.Equal(t, "Lucky Me", rows[1].BrandName)
	assert.Equal(t, 0.25, rows[1].Share)
}

func TestCategoryMixLabelsNulls(t *testing.T) {
	f := newFixture(t)
	ts := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	f.addTransaction(t, "t1", ts, ptr(10.0), nil, ptr("beverages"), nil)
	f.addTransaction(t, "t2", ts, ptr(10.0), nil, nil, nil)

	rows, err := f.svc.CategoryMix(f.ctx, golddomain.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	categories := []string{rows[0].Category, rows[1].Category}
	assert.Contains(t, categories, "beverages")
	assert.Contains(t, categories, "Uncategorized")
	assert.Equal(t, 0.5, rows[0].Share)
}

func TestStoreActivityTracksLastTransaction(t *testing.T) {
	f := newFixture(t)
	first := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	f.addTransaction(t, "t1", first, ptr(10.0), nil, nil, ptr("s1"))
	f.addTransaction(t, "t2", second, ptr(20.0), nil, nil, ptr("s1"))

	rows, err := f.svc.StoreActivity(f.ctx, golddomain.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s1", rows[0].StoreID)
	assert.Equal(t, int64(2), rows[0].TxCount)
	assert.Equal(t, 30.0, rows[0].Revenue)
	assert.Equal(t, second, rows[0].LastTransactionAt.UTC())
}

func TestEmptySilverYieldsEmptyResults(t *testing.T) {
	f := newFixture(t)

	daily, err := f.svc.DailyRevenue(f.ctx, golddomain.Query{})
	require.NoError(t, err)
	assert.Empty(t, daily)

	brands, err := f.svc.BrandPerformance(f.ctx, golddomain.Query{})
	require.NoError(t, err)
	assert.Empty(t, brands)
}

func TestInvalidTimeRangeRejected(t *testing.T) {
	f := newFixture(t)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.DailyRevenue(f.ctx, golddomain.Query{Start: end.Add(time.Hour), End: end})
	assert.ErrorIs(t, err, golddomain.ErrInvalidTimeRange)
}
