package report

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightpulse/scout/internal/auditcontext"
	"github.com/insightpulse/scout/internal/authz"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type stubGoldSvc struct {
	golddomain.Service

	daily  []golddomain.DailyRevenueRow
	brands []golddomain.BrandPerformanceRow
}

func (s *stubGoldSvc) DailyRevenue(ctx context.Context, query golddomain.Query) ([]golddomain.DailyRevenueRow, error) {
	return s.daily, nil
}

func (s *stubGoldSvc) BrandPerformance(ctx context.Context, query golddomain.Query) ([]golddomain.BrandPerformanceRow, error) {
	return s.brands, nil
}

type allowAll struct {
	authz.Service
}

func (allowAll) Authorize(ctx context.Context, actor, orgID, object, action string) error {
	return nil
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(42))
	return auditcontext.WithActor(ctx, "system", "")
}

func newService(gold golddomain.Service) Service {
	return NewService(Params{
		Log:     zap.NewNop(),
		GoldSvc: gold,
		Authz:   allowAll{},
	})
}

func TestDailySummaryRendersPDF(t *testing.T) {
	svc := newService(&stubGoldSvc{
		daily: []golddomain.DailyRevenueRow{
			{Date: "2024-01-01", TxCount: 3, TotalRevenue: 300, AvgValue: 100},
		},
		brands: []golddomain.BrandPerformanceRow{
			{BrandName: "Acme Cola", Revenue: 200, TxCount: 2, Share: 0.6667},
			{BrandName: "Unbranded", Revenue: 100, TxCount: 1, Share: 0.3333},
		},
	})

	r, err := svc.DailySummary(testContext(t), time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestDailySummaryEmptyDayStillRenders(t *testing.T) {
	svc := newService(&stubGoldSvc{})

	r, err := svc.DailySummary(testContext(t), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestDailySummaryRequiresOrganization(t *testing.T) {
	svc := newService(&stubGoldSvc{})

	_, err := svc.DailySummary(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidOrganization)
}

func TestDailySummaryRejectsZeroDate(t *testing.T) {
	svc := newService(&stubGoldSvc{})

	_, err := svc.DailySummary(testContext(t), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDate)
}
