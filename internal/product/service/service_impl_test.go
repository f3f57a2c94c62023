package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightpulse/scout/internal/auditcontext"
	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/orgcontext"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
)

type denyAll struct{}

func (denyAll) Authorize(_ context.Context, _, _, _, _ string) error { return authz.ErrForbidden }

func TestServiceDeniesUnauthorizedActor(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{Log: zap.NewNop(), Authz: denyAll{}})
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctx = auditcontext.WithActor(ctx, "system", "")

	_, err = svc.Create(ctx, productdomain.CreateRequest{SKU: "sku-1", Name: "Cola 330ml"})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.Classify(ctx, "cola 330ml")
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.ListCategories(ctx)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, node.Generate().String()), authz.ErrForbidden)
}
