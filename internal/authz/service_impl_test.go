package authz

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	auditrepo "github.com/insightpulse/scout/internal/audit/repository"
)

func newTestService(t *testing.T) (Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Enforcer:  enforcer,
		AuditRepo: auditrepo.Provide(),
	})
	return svc, db, node
}

func TestAuthorizeSystemActor(t *testing.T) {
	svc, _, node := newTestService(t)
	orgID := node.Generate().String()

	err := svc.Authorize(context.Background(), "system", orgID, ObjectBronze, ActionBronzeLoad)
	assert.NoError(t, err)
}

func TestAuthorizeAPIKeyActorKeyManagement(t *testing.T) {
	svc, _, node := newTestService(t)
	orgID := node.Generate().String()
	actor := "api_key:" + node.Generate().String()

	for _, action := range []string{ActionAPIKeyView, ActionAPIKeyCreate, ActionAPIKeyRotate, ActionAPIKeyRevoke} {
		assert.NoError(t, svc.Authorize(context.Background(), actor, orgID, ObjectAPIKey, action), action)
	}
}

func TestAuthorizeRejectsUnknownActor(t *testing.T) {
	svc, _, node := newTestService(t)
	orgID := node.Generate().String()

	err := svc.Authorize(context.Background(), "user:42", orgID, ObjectBrand, ActionBrandView)
	assert.ErrorIs(t, err, ErrInvalidActor)

	err = svc.Authorize(context.Background(), "", orgID, ObjectBrand, ActionBrandView)
	assert.ErrorIs(t, err, ErrInvalidActor)

	err = svc.Authorize(context.Background(), "api_key:not-a-snowflake", orgID, ObjectBrand, ActionBrandView)
	assert.ErrorIs(t, err, ErrInvalidActor)
}

func TestAuthorizeDenialWritesAuditTrail(t *testing.T) {
	svc, db, node := newTestService(t)
	orgID := node.Generate().String()

	err := svc.Authorize(context.Background(), "user:42", orgID, ObjectBrand, ActionBrandView)
	require.ErrorIs(t, err, ErrInvalidActor)

	var entries []auditdomain.AuditLog
	require.NoError(t, db.Where("action = ?", "authz.denied").Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "authz", entries[0].TargetType)
	require.NotNil(t, entries[0].OrgID)
	assert.Equal(t, orgID, entries[0].OrgID.String())
}
