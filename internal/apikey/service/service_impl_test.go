package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apikeydomain "github.com/insightpulse/scout/internal/apikey/domain"
	"github.com/insightpulse/scout/internal/auditcontext"
	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type denyAll struct{}

func (denyAll) Authorize(_ context.Context, _, _, _, _ string) error { return authz.ErrForbidden }

func TestServiceDeniesUnauthorizedActor(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{Log: zap.NewNop(), Authz: denyAll{}})
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctx = auditcontext.WithActor(ctx, "system", "")

	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.Create(ctx, apikeydomain.CreateRequest{Name: "edge", Scopes: []string{apikeydomain.ScopeIngestWrite}})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	keyID := node.Generate().String()
	_, err = svc.Rotate(ctx, keyID)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	assert.ErrorIs(t, svc.Revoke(ctx, keyID), authz.ErrForbidden)
}
