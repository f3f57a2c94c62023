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
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	bronzerepo "github.com/insightpulse/scout/internal/bronze/repository"
	"github.com/insightpulse/scout/internal/clock"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	devicerepo "github.com/insightpulse/scout/internal/device/repository"
	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
	landingrepo "github.com/insightpulse/scout/internal/landing/repository"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type allowAll struct{}

func (allowAll) Authorize(_ context.Context, _, _, _, _ string) error { return nil }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&landingdomain.RawIngestRecord{},
		&bronzedomain.BronzeRecord{},
		&devicedomain.Device{},
	))
	return db
}

type fixture struct {
	svc     *Service
	db      *gorm.DB
	clock   *clock.FakeClock
	orgID   snowflake.ID
	ctx     context.Context
	landing landingdomain.Repository
	bronze  bronzedomain.Repository
	devices devicedomain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	ctx = auditcontext.WithActor(ctx, "system", "")

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fakeClock,
		Repo:        bronzerepo.Provide(),
		LandingRepo: landingrepo.Provide(),
		DeviceRepo:  devicerepo.Provide(),
		Authz:       allowAll{},
	}).(*Service)

	return &fixture{
		svc:     svc,
		db:      db,
		clock:   fakeClock,
		orgID:   orgID,
		ctx:     ctx,
		landing: landingrepo.Provide(),
		bronze:  bronzerepo.Provide(),
		devices: devicerepo.Provide(),
	}
}

func (f *fixture) ingest(t *testing.T, payload map[string]any, sourcePath string) {
	t.Helper()
	record := &landingdomain.RawIngestRecord{
		ID:         f.svc.genID.Generate(),
		OrgID:      f.orgID,
		SourcePath: sourcePath,
		ReceivedAt: f.clock.Now(),
	}
	if payload != nil {
		record.Payload = datatypes.JSONMap(payload)
	}
	require.NoError(t, f.landing.Insert(f.ctx, f.db, record))
}

func (f *fixture) registerDevice(t *testing.T, deviceID string) {
	t.Helper()
	now := f.clock.Now()
	require.NoError(t, f.devices.Insert(f.ctx, f.db, &devicedomain.Device{
		ID:        f.svc.genID.Generate(),
		OrgID:     f.orgID,
		DeviceID:  deviceID,
		Name:      deviceID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func (f *fixture) bronzeRecords(t *testing.T) []bronzedomain.BronzeRecord {
	t.Helper()
	records, err := f.bronze.List(f.ctx, f.db, f.orgID, 0)
	require.NoError(t, err)
	return records
}

func TestLoadPendingResolvesFields(t *testing.T) {
	f := newFixture(t)
	f.registerDevice(t, "SCOUTPI-0002")

	f.ingest(t, map[string]any{
		"transaction_id": "t1",
		"timestamp":      "2024-01-01T00:00:00Z",
		"peso_value":     "99.99",
		"region":         "NCR",
	}, "edge/scoutpi-0002/2024/tx-0001.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	records := f.bronzeRecords(t)
	require.Len(t, records, 1)
	assert.Equal(t, "t1", records[0].RecordID)
	assert.Equal(t, "SCOUTPI-0002", records[0].DeviceID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), records[0].CapturedAt.UTC())
	assert.Equal(t, "tx-0001.json", records[0].SourceFile)
}

func TestLoadPendingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, map[string]any{"transaction_id": "t1"}, "edge/tx.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	pending, err := f.landing.Count(f.ctx, f.db, f.orgID)
	require.NoError(t, err)
	assert.Zero(t, pending)

	inserted, err = f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Len(t, f.bronzeRecords(t), 1)
}

func TestLoadPendingDedupsSameIdentity(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, map[string]any{"transaction_id": "t1", "region": "NCR"}, "edge/a.json")
	f.ingest(t, map[string]any{"transaction_id": "t1", "region": "CAR"}, "edge/b.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Len(t, f.bronzeRecords(t), 1)
}

func TestLoadPendingSynthesizesIdentity(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, map[string]any{"peso_value": "10"}, "edge/tx.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	records := f.bronzeRecords(t)
	require.Len(t, records, 1)
	assert.Equal(t, syntheticRecordID(f.clock.Now().Unix(), 1), records[0].RecordID)
}

func TestLoadPendingIdFieldFallback(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, map[string]any{"id": "row-7"}, "edge/tx.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, "row-7", f.bronzeRecords(t)[0].RecordID)
}

func TestLoadPendingDeviceFallsBackToUnknown(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, map[string]any{"transaction_id": "t1"}, "edge/deviceA::file.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, bronzedomain.DeviceUnknown, f.bronzeRecords(t)[0].DeviceID)
}

func TestLoadPendingExplicitDeviceWins(t *testing.T) {
	f := newFixture(t)
	f.registerDevice(t, "SCOUTPI-0002")
	f.ingest(t, map[string]any{
		"transaction_id": "t1",
		"device_id":      "scoutpi-0003",
	}, "edge/scoutpi-0002/tx.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, "SCOUTPI-0003", f.bronzeRecords(t)[0].DeviceID)
}

func TestLoadPendingMalformedTimestampFallsBackToReceivedAt(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, map[string]any{
		"transaction_id": "t1",
		"timestamp":      "not-a-time",
	}, "edge/tx.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, f.clock.Now(), f.bronzeRecords(t)[0].CapturedAt.UTC())
}

func TestLoadPendingDrainsCollidedRows(t *testing.T) {
	f := newFixture(t)
	f.ingest(t, map[string]any{"transaction_id": "t1", "region": "NCR"}, "edge/a.json")

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	f.ingest(t, map[string]any{"transaction_id": "t1", "region": "CAR"}, "edge/b.json")

	inserted, err = f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	pending, err := f.landing.Count(f.ctx, f.db, f.orgID)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Len(t, f.bronzeRecords(t), 1)
}

func TestLoadPendingEmptyBufferReturnsZero(t *testing.T) {
	f := newFixture(t)

	inserted, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestLoadPendingUpdatesDeviceLastSeen(t *testing.T) {
	f := newFixture(t)
	f.registerDevice(t, "SCOUTPI-0002")
	f.ingest(t, map[string]any{
		"transaction_id": "t1",
		"timestamp":      "2024-01-01T00:00:00Z",
	}, "edge/scoutpi-0002/tx.json")

	_, err := f.svc.LoadPending(f.ctx)
	require.NoError(t, err)

	device, err := f.devices.FindByDeviceID(f.ctx, f.db, f.orgID, "SCOUTPI-0002")
	require.NoError(t, err)
	require.NotNil(t, device)
	require.NotNil(t, device.LastSeenAt)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), device.LastSeenAt.UTC())
}
