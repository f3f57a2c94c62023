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
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/auditcontext"
	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	bronzerepo "github.com/insightpulse/scout/internal/bronze/repository"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/orgcontext"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
	silverrepo "github.com/insightpulse/scout/internal/silver/repository"
)

type allowAll struct{}

func (allowAll) Authorize(_ context.Context, _, _, _, _ string) error { return nil }

type stubBrandSvc struct {
	branddomain.Service
	match *branddomain.Match
}

func (s *stubBrandSvc) Resolve(_ context.Context, _ string) (*branddomain.Match, error) {
	return s.match, nil
}

type stubProductSvc struct {
	productdomain.Service
	category string
}

func (s *stubProductSvc) Classify(_ context.Context, _ string) (string, error) {
	return s.category, nil
}

type fixture struct {
	svc    *Service
	db     *gorm.DB
	clock  *clock.FakeClock
	node   *snowflake.Node
	orgID  snowflake.ID
	ctx    context.Context
	bronze bronzedomain.Repository
	silver silverdomain.Repository
	brands *stubBrandSvc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&bronzedomain.BronzeRecord{},
		&silverdomain.SilverTransaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	ctx = auditcontext.WithActor(ctx, "system", "")

	brands := &stubBrandSvc{}
	svc := NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fakeClock,
		Repo:       silverrepo.Provide(),
		BronzeRepo: bronzerepo.Provide(),
		BrandSvc:   brands,
		ProductSvc: &stubProductSvc{},
		Authz:      allowAll{},
	}).(*Service)

	return &fixture{
		svc:    svc,
		db:     db,
		clock:  fakeClock,
		node:   node,
		orgID:  orgID,
		ctx:    ctx,
		bronze: bronzerepo.Provide(),
		silver: silverrepo.Provide(),
		brands: brands,
	}
}

func (f *fixture) addBronze(t *testing.T, recordID string, payload map[string]any) {
	t.Helper()
	record := &bronzedomain.BronzeRecord{
		ID:         f.node.Generate(),
		OrgID:      f.orgID,
		RecordID:   recordID,
		DeviceID:   "SCOUTPI-0002",
		CapturedAt: f.clock.Now(),
		SourceFile: "tx.json",
		CreatedAt:  f.clock.Now(),
	}
	if payload != nil {
		record.Payload = datatypes.JSONMap(payload)
	}
	wrote, err := f.bronze.InsertIfAbsent(f.ctx, f.db, record)
	require.NoError(t, err)
	require.True(t, wrote)
}

func (f *fixture) transactions(t *testing.T) []silverdomain.SilverTransaction {
	t.Helper()
	txns, err := f.silver.List(f.ctx, f.db, f.orgID, 0)
	require.NoError(t, err)
	return txns
}

func TestPromoteNewParsesStrictNumeric(t *testing.T) {
	f := newFixture(t)
	f.addBronze(t, "t1", map[string]any{
		"transaction_id": "t1",
		"peso_value":     "12.50",
		"region":         "NCR",
	})

	inserted, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	txns := f.transactions(t)
	require.Len(t, txns, 1)
	require.NotNil(t, txns[0].PesoValue)
	assert.Equal(t, 12.50, *txns[0].PesoValue)
	assert.Equal(t, "NCR", txns[0].Region)
}

func TestPromoteNewMalformedPesoBecomesNull(t *testing.T) {
	f := newFixture(t)
	f.addBronze(t, "t1", map[string]any{
		"transaction_id": "t1",
		"peso_value":     "abc",
	})

	inserted, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Nil(t, f.transactions(t)[0].PesoValue)
}

func TestPromoteNewRejectsSignedAndPaddedNumerics(t *testing.T) {
	for _, raw := range []string{"-5", "+5", "1,000", "12.", ".5", "12.5.0", " 99"} {
		f := newFixture(t)
		f.addBronze(t, "t1", map[string]any{
			"transaction_id": "t1",
			"peso_value":     raw,
		})

		_, err := f.svc.PromoteNew(f.ctx)
		require.NoError(t, err)
		assert.Nil(t, f.transactions(t)[0].PesoValue, raw)
	}
}

func TestPromoteNewDefaultsRegion(t *testing.T) {
	f := newFixture(t)
	f.addBronze(t, "t1", map[string]any{"transaction_id": "t1"})

	_, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, silverdomain.DefaultRegion, f.transactions(t)[0].Region)
}

func TestPromoteNewFallsBackToRecordID(t *testing.T) {
	f := newFixture(t)
	f.addBronze(t, "bronze-9", map[string]any{"peso_value": "10"})

	_, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "bronze-9", f.transactions(t)[0].TransactionID)
}

func TestPromoteNewIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addBronze(t, "t1", map[string]any{"transaction_id": "t1"})

	inserted, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, err = f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Len(t, f.transactions(t), 1)
}

func TestPromoteNewDedupsWithinPass(t *testing.T) {
	f := newFixture(t)
	f.addBronze(t, "a", map[string]any{"transaction_id": "t1", "region": "NCR"})
	f.addBronze(t, "b", map[string]any{"transaction_id": "t1", "region": "CAR"})

	inserted, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Len(t, f.transactions(t), 1)
}

func TestPromoteNewEmptyBronzeReturnsZero(t *testing.T) {
	f := newFixture(t)

	inserted, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestPromoteNewAnnotatesBrandMatch(t *testing.T) {
	f := newFixture(t)
	brandID := f.node.Generate()
	f.brands.match = &branddomain.Match{
		Brand:      &branddomain.Brand{ID: brandID, Name: "Coca-Cola"},
		Confidence: 0.9,
		Method:     branddomain.MatchMethodAlias,
	}
	f.addBronze(t, "t1", map[string]any{
		"transaction_id": "t1",
		"brand_name":     "Coke",
	})

	_, err := f.svc.PromoteNew(f.ctx)
	require.NoError(t, err)

	txns := f.transactions(t)
	require.NotNil(t, txns[0].BrandID)
	assert.Equal(t, brandID, *txns[0].BrandID)
	require.NotNil(t, txns[0].BrandConfidence)
	assert.Equal(t, 0.9, *txns[0].BrandConfidence)
}
