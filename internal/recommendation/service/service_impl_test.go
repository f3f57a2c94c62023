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
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	"github.com/insightpulse/scout/internal/clock"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	devicerepo "github.com/insightpulse/scout/internal/device/repository"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	"github.com/insightpulse/scout/internal/orgcontext"
	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
	recorepo "github.com/insightpulse/scout/internal/recommendation/repository"
)

type allowAll struct{}

func (allowAll) Authorize(_ context.Context, _, _, _, _ string) error { return nil }

type stubGoldSvc struct {
	golddomain.Service
	brands []golddomain.BrandPerformanceRow
}

func (s *stubGoldSvc) BrandPerformance(_ context.Context, _ golddomain.Query) ([]golddomain.BrandPerformanceRow, error) {
	return s.brands, nil
}

type fixture struct {
	svc     recodomain.Service
	db      *gorm.DB
	node    *snowflake.Node
	orgID   snowflake.ID
	ctx     context.Context
	clock   *clock.FakeClock
	gold    *stubGoldSvc
	devices devicedomain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&recodomain.Recommendation{},
		&devicedomain.Device{},
		&bronzedomain.BronzeRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	ctx = auditcontext.WithActor(ctx, "system", "")

	gold := &stubGoldSvc{}
	svc := NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fakeClock,
		Repo:       recorepo.Provide(),
		DeviceRepo: devicerepo.Provide(),
		GoldSvc:    gold,
		Authz:      allowAll{},
	})

	return &fixture{
		svc:     svc,
		db:      db,
		node:    node,
		orgID:   orgID,
		ctx:     ctx,
		clock:   fakeClock,
		gold:    gold,
		devices: devicerepo.Provide(),
	}
}

func (f *fixture) recommendations(t *testing.T) []recodomain.Recommendation {
	t.Helper()
	var recos []recodomain.Recommendation
	require.NoError(t, f.db.Where("org_id = ?", f.orgID).Find(&recos).Error)
	return recos
}

func TestGenerateBrandConcentration(t *testing.T) {
	f := newFixture(t)
	f.gold.brands = []golddomain.BrandPerformanceRow{
		{BrandName: "Coca-Cola", Revenue: 900, TxCount: 90, Share: 0.9},
		{BrandName: "Lucky Me", Revenue: 100, TxCount: 10, Share: 0.1},
	}

	generated, err := f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	recos := f.recommendations(t)
	require.Len(t, recos, 1)
	assert.Equal(t, recodomain.KindBrandConcentration, recos[0].Kind)
	assert.Equal(t, "Coca-Cola", recos[0].Subject)
	assert.Equal(t, "2024-06-10", recos[0].Window)
}

func TestGenerateBelowConcentrationThreshold(t *testing.T) {
	f := newFixture(t)
	f.gold.brands = []golddomain.BrandPerformanceRow{
		{BrandName: "Coca-Cola", Share: 0.4},
		{BrandName: "Lucky Me", Share: 0.35},
	}

	generated, err := f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, generated)
}

func TestGenerateStaleDevice(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	stale := now.Add(-72 * time.Hour)
	fresh := now.Add(-time.Hour)

	require.NoError(t, f.devices.Insert(f.ctx, f.db, &devicedomain.Device{
		ID: f.node.Generate(), OrgID: f.orgID, DeviceID: "SCOUTPI-0002",
		Name: "SCOUTPI-0002", Active: true, LastSeenAt: &stale,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.devices.Insert(f.ctx, f.db, &devicedomain.Device{
		ID: f.node.Generate(), OrgID: f.orgID, DeviceID: "SCOUTPI-0003",
		Name: "SCOUTPI-0003", Active: true, LastSeenAt: &fresh,
		CreatedAt: now, UpdatedAt: now,
	}))

	generated, err := f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	recos := f.recommendations(t)
	require.Len(t, recos, 1)
	assert.Equal(t, recodomain.KindStaleDevice, recos[0].Kind)
	assert.Equal(t, "SCOUTPI-0002", recos[0].Subject)
}

func TestGenerateLowQualityFeed(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	require.NoError(t, f.db.Create(&bronzedomain.BronzeRecord{
		ID: f.node.Generate(), OrgID: f.orgID, RecordID: "t1",
		DeviceID: "unknown", CapturedAt: now, QualityScore: 20, CreatedAt: now,
	}).Error)

	generated, err := f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	recos := f.recommendations(t)
	require.Len(t, recos, 1)
	assert.Equal(t, recodomain.KindLowQualityFeed, recos[0].Kind)
}

func TestGenerateIsIdempotentPerWindow(t *testing.T) {
	f := newFixture(t)
	f.gold.brands = []golddomain.BrandPerformanceRow{
		{BrandName: "Coca-Cola", Share: 0.9},
	}

	generated, err := f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	generated, err = f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, generated)
	assert.Len(t, f.recommendations(t), 1)

	f.clock.Advance(24 * time.Hour)
	generated, err = f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	assert.Len(t, f.recommendations(t), 2)
}

func TestGenerateNothingPending(t *testing.T) {
	f := newFixture(t)

	generated, err := f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, generated)
}
