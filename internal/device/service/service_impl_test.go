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
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	"github.com/insightpulse/scout/internal/orgcontext"
)

func registeredDevices() []devicedomain.Device {
	return []devicedomain.Device{
		{DeviceID: "SCOUTPI-0002", Active: true},
		{DeviceID: "SCOUTPI-0003", Active: true},
		{DeviceID: "SCOUTPI-00021", Active: true},
		{DeviceID: "SCOUTPI-0099", Active: false},
	}
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "plain match",
			path: "edge/scoutpi-0003/2024/tx.json",
			want: "SCOUTPI-0003",
		},
		{
			name: "longest id wins over its prefix",
			path: "edge/scoutpi-00021/2024/tx.json",
			want: "SCOUTPI-00021",
		},
		{
			name: "mixed case path",
			path: "Edge/ScoutPi-0002::file.json",
			want: "SCOUTPI-0002",
		},
		{
			name: "inactive device ignored",
			path: "edge/scoutpi-0099/tx.json",
			want: "",
		},
		{
			name: "no registered device in path",
			path: "edge/deviceA::file.json",
			want: "",
		},
		{
			name: "empty path",
			path: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchPath(tt.path, registeredDevices())
			assert.Equal(t, tt.want, got)
		})
	}
}

type denyAll struct{}

func (denyAll) Authorize(_ context.Context, _, _, _, _ string) error { return authz.ErrForbidden }

func TestServiceDeniesUnauthorizedActor(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{Log: zap.NewNop(), Authz: denyAll{}})
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctx = auditcontext.WithActor(ctx, "system", "")

	_, err = svc.Create(ctx, devicedomain.CreateRequest{DeviceID: "SCOUTPI-0005", Name: "shelf cam"})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.MatchPath(ctx, "edge/scoutpi-0002/tx.json")
	assert.ErrorIs(t, err, authz.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, node.Generate().String()), authz.ErrForbidden)
}
