package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/clock"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	"github.com/insightpulse/scout/internal/orgcontext"
)

// defaultWindow is used when a query omits its bounds.
const defaultWindow = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  golddomain.Repository
	Authz authz.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  golddomain.Repository
	authz authz.Service
}

func NewService(p Params) golddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("gold.service"),
		clock: p.Clock,
		repo:  p.Repo,
		authz: p.Authz,
	}
}

func (s *Service) DailyRevenue(ctx context.Context, query golddomain.Query) ([]golddomain.DailyRevenueRow, error) {
	orgID, start, end, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.repo.DailyRevenue(ctx, s.db, orgID, start, end)
}

func (s *Service) BrandPerformance(ctx context.Context, query golddomain.Query) ([]golddomain.BrandPerformanceRow, error) {
	orgID, start, end, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.BrandPerformance(ctx, s.db, orgID, start, end)
	if err != nil {
		return nil, err
	}

	var total float64
	for i := range rows {
		total += rows[i].Revenue
	}
	if total > 0 {
		for i := range rows {
			rows[i].Share = rows[i].Revenue / total
		}
	}
	return rows, nil
}

func (s *Service) CategoryMix(ctx context.Context, query golddomain.Query) ([]golddomain.CategoryMixRow, error) {
	orgID, start, end, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.CategoryMix(ctx, s.db, orgID, start, end)
	if err != nil {
		return nil, err
	}

	var total int64
	for i := range rows {
		total += rows[i].TxCount
	}
	if total > 0 {
		for i := range rows {
			rows[i].Share = float64(rows[i].TxCount) / float64(total)
		}
	}
	return rows, nil
}

func (s *Service) StoreActivity(ctx context.Context, query golddomain.Query) ([]golddomain.StoreActivityRow, error) {
	orgID, start, end, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.repo.StoreActivity(ctx, s.db, orgID, start, end)
}

func (s *Service) resolve(ctx context.Context, query golddomain.Query) (snowflake.ID, time.Time, time.Time, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, time.Time{}, time.Time{}, golddomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectGold, authz.ActionGoldView); err != nil {
		return 0, time.Time{}, time.Time{}, err
	}

	end := query.End
	if end.IsZero() {
		end = s.clock.Now()
	}
	start := query.Start
	if start.IsZero() {
		start = end.Add(-defaultWindow)
	}
	if !start.Before(end) {
		return 0, time.Time{}, time.Time{}, golddomain.ErrInvalidTimeRange
	}
	return orgID, start.UTC(), end.UTC(), nil
}
