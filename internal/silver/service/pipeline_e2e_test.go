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
	bronzeservice "github.com/insightpulse/scout/internal/bronze/service"
	"github.com/insightpulse/scout/internal/clock"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	devicerepo "github.com/insightpulse/scout/internal/device/repository"
	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
	landingrepo "github.com/insightpulse/scout/internal/landing/repository"
	"github.com/insightpulse/scout/internal/orgcontext"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
	silverrepo "github.com/insightpulse/scout/internal/silver/repository"
)

// Ingests one payload, runs a full load + promote pass and checks the silver
// row end to end, device resolved from the source path.
func TestPipelineEndToEnd(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&landingdomain.RawIngestRecord{},
		&bronzedomain.BronzeRecord{},
		&silverdomain.SilverTransaction{},
		&devicedomain.Device{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	ctx = auditcontext.WithActor(ctx, "system", "")

	devices := devicerepo.Provide()
	now := fakeClock.Now()
	require.NoError(t, devices.Insert(ctx, db, &devicedomain.Device{
		ID:        node.Generate(),
		OrgID:     orgID,
		DeviceID:  "SCOUTPI-0002",
		Name:      "SCOUTPI-0002",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	landing := landingrepo.Provide()
	require.NoError(t, landing.Insert(ctx, db, &landingdomain.RawIngestRecord{
		ID:    node.Generate(),
		OrgID: orgID,
		Payload: datatypes.JSONMap{
			"transaction_id": "t1",
			"timestamp":      "2024-01-01T00:00:00Z",
			"peso_value":     "99.99",
			"region":         "NCR",
		},
		SourcePath: "edge/scoutpi-0002::file.json",
		ReceivedAt: now,
	}))

	loader := bronzeservice.NewService(bronzeservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fakeClock,
		Repo:        bronzerepo.Provide(),
		LandingRepo: landing,
		DeviceRepo:  devices,
		Authz:       allowAll{},
	})

	transformer := NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fakeClock,
		Repo:       silverrepo.Provide(),
		BronzeRepo: bronzerepo.Provide(),
		BrandSvc:   &stubBrandSvc{},
		ProductSvc: &stubProductSvc{},
		Authz:      allowAll{},
	})

	loaded, err := loader.LoadPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	promoted, err := transformer.PromoteNew(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	var txns []silverdomain.SilverTransaction
	require.NoError(t, db.Where("org_id = ?", orgID).Find(&txns).Error)
	require.Len(t, txns, 1)

	assert.Equal(t, "t1", txns[0].TransactionID)
	assert.Equal(t, "NCR", txns[0].Region)
	require.NotNil(t, txns[0].PesoValue)
	assert.Equal(t, 99.99, *txns[0].PesoValue)
	assert.Equal(t, "SCOUTPI-0002", txns[0].DeviceID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), txns[0].Timestamp.UTC())
}
