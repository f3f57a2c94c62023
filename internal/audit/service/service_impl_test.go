package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	"github.com/insightpulse/scout/internal/auditcontext"
	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type denyAll struct{}

func (denyAll) Authorize(_ context.Context, _, _, _, _ string) error { return authz.ErrForbidden }

func TestListDeniesUnauthorizedActor(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{Log: zap.NewNop(), Authz: denyAll{}})
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctx = auditcontext.WithActor(ctx, "system", "")

	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}
