package report

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/insightpulse/scout/internal/authz"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	"github.com/insightpulse/scout/internal/orgcontext"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidDate         = errors.New("invalid_date")
)

// Service renders downloadable summaries from the gold aggregates.
type Service interface {
	// DailySummary renders a one-day PDF: revenue totals plus the top
	// brands table. A day with no transactions still renders, with zeros.
	DailySummary(ctx context.Context, date time.Time) (io.Reader, error)
}

type Params struct {
	fx.In

	Log     *zap.Logger
	GoldSvc golddomain.Service
	Authz   authz.Service
}

type service struct {
	log     *zap.Logger
	goldSvc golddomain.Service
	authz   authz.Service
}

func NewService(p Params) Service {
	return &service{
		log:     p.Log.Named("report.service"),
		goldSvc: p.GoldSvc,
		authz:   p.Authz,
	}
}

func (s *service) DailySummary(ctx context.Context, date time.Time) (io.Reader, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectReport, authz.ActionReportGenerate); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, ErrInvalidDate
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	query := golddomain.Query{Start: dayStart, End: dayStart.Add(24 * time.Hour)}

	daily, err := s.goldSvc.DailyRevenue(ctx, query)
	if err != nil {
		return nil, err
	}
	brands, err := s.goldSvc.BrandPerformance(ctx, query)
	if err != nil {
		return nil, err
	}

	summary := dailySummaryData{
		Date:   dayStart.Format("2006-01-02"),
		Brands: brands,
	}
	for _, row := range daily {
		summary.TxCount += row.TxCount
		summary.TotalRevenue += row.TotalRevenue
	}
	if summary.TxCount > 0 {
		summary.AvgValue = summary.TotalRevenue / float64(summary.TxCount)
	}

	return renderDailySummary(summary)
}
