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

	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	auditrepo "github.com/insightpulse/scout/internal/audit/repository"
	"github.com/insightpulse/scout/internal/auditcontext"
	"github.com/insightpulse/scout/internal/authz"
	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	brandrepo "github.com/insightpulse/scout/internal/brand/repository"
	"github.com/insightpulse/scout/internal/cache"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type fixture struct {
	svc   branddomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
}

// newFixture wires the service against the real policy enforcer so the tests
// exercise the same authorization path the server does.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&branddomain.Brand{},
		&branddomain.BrandAlias{},
		&auditdomain.AuditLog{},
	))

	enforcer, err := authz.NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	authzSvc := authz.NewService(authz.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Enforcer:  enforcer,
		AuditRepo: auditrepo.Provide(),
	})

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  brandrepo.Provide(),
		Authz: authzSvc,
		Cache: cache.NewBrandResolverCache(),
	})

	return &fixture{svc: svc, db: db, node: node, orgID: node.Generate()}
}

func TestCreateRejectsMissingActor(t *testing.T) {
	f := newFixture(t)
	ctx := orgcontext.WithOrgID(context.Background(), f.orgID)

	_, err := f.svc.Create(ctx, branddomain.CreateRequest{Name: "Acme"})
	require.ErrorIs(t, err, authz.ErrInvalidActor)

	var count int64
	require.NoError(t, f.db.Model(&branddomain.Brand{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateWithAPIKeyActor(t *testing.T) {
	f := newFixture(t)
	ctx := orgcontext.WithOrgID(context.Background(), f.orgID)
	ctx = auditcontext.WithActor(ctx, "api_key", f.node.Generate().String())

	resp, err := f.svc.Create(ctx, branddomain.CreateRequest{Name: "Acme", Aliases: []string{"ACME Corp"}})
	require.NoError(t, err)
	assert.Equal(t, "Acme", resp.Name)
	assert.Equal(t, []string{"ACME Corp"}, resp.Aliases)
}

func TestDeleteRequiresAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := orgcontext.WithOrgID(context.Background(), f.orgID)
	actorCtx := auditcontext.WithActor(ctx, "system", "")

	created, err := f.svc.Create(actorCtx, branddomain.CreateRequest{Name: "Acme"})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, authz.ErrInvalidActor)

	require.NoError(t, f.svc.Delete(actorCtx, created.ID))
}
