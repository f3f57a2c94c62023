package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/clock"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	"github.com/insightpulse/scout/internal/observability/metrics"
	"github.com/insightpulse/scout/internal/orgcontext"
	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
)

const (
	// brandConcentrationShare flags an org whose top brand dominates the
	// revenue mix over the lookback window.
	brandConcentrationShare = 0.6
	brandLookback           = 7 * 24 * time.Hour

	// staleDeviceAfter flags registered active devices that stopped
	// reporting.
	staleDeviceAfter = 48 * time.Hour

	// lowQualityAvg flags a feed whose average bronze quality score sank
	// below half.
	lowQualityAvg      = 50.0
	lowQualityLookback = 24 * time.Hour
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       recodomain.Repository
	DeviceRepo devicedomain.Repository
	GoldSvc    golddomain.Service
	Authz      authz.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       recodomain.Repository
	deviceRepo devicedomain.Repository
	goldSvc    golddomain.Service
	authz      authz.Service
	metrics    *metrics.Metrics
}

func NewService(p Params) recodomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("recommendation.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		deviceRepo: p.DeviceRepo,
		goldSvc:    p.GoldSvc,
		authz:      p.Authz,
		metrics:    p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context) (int, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, recodomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectRecommendation, authz.ActionRecommendationGenerate); err != nil {
		return 0, err
	}

	now := s.clock.Now()
	window := now.Format("2006-01-02")

	candidates, err := s.deriveCandidates(ctx, orgID, now, window)
	if err != nil {
		return 0, err
	}

	generated := 0
	byKind := map[string]int{}
	for _, candidate := range candidates {
		wrote, err := s.repo.InsertIfAbsent(ctx, s.db, candidate)
		if err != nil {
			return 0, err
		}
		if wrote {
			generated++
			byKind[candidate.Kind]++
		}
	}

	if s.metrics != nil {
		for kind, count := range byKind {
			s.metrics.RecordRecommendations(ctx, orgID.String(), kind, count)
		}
	}
	s.log.Info("recommendations generated",
		zap.Int("generated", generated),
		zap.String("window", window),
	)
	return generated, nil
}

func (s *Service) deriveCandidates(ctx context.Context, orgID snowflake.ID, now time.Time, window string) ([]*recodomain.Recommendation, error) {
	var candidates []*recodomain.Recommendation

	brands, err := s.goldSvc.BrandPerformance(ctx, golddomain.Query{
		Start: now.Add(-brandLookback),
		End:   now,
	})
	if err != nil {
		return nil, err
	}
	if len(brands) > 0 && brands[0].Share >= brandConcentrationShare {
		top := brands[0]
		candidates = append(candidates, &recodomain.Recommendation{
			ID:      s.genID.Generate(),
			OrgID:   orgID,
			Kind:    recodomain.KindBrandConcentration,
			Subject: top.BrandName,
			Window:  window,
			Title:   "Revenue concentrated in one brand",
			Message: fmt.Sprintf("%s accounts for %.0f%% of revenue over the last 7 days. Consider diversifying shelf space.", top.BrandName, top.Share*100),
			Payload: datatypes.JSONMap{
				"share":    top.Share,
				"revenue":  top.Revenue,
				"tx_count": top.TxCount,
			},
			CreatedAt: now,
		})
	}

	devices, err := s.deviceRepo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-staleDeviceAfter)
	for i := range devices {
		device := &devices[i]
		if !device.Active {
			continue
		}
		if device.LastSeenAt != nil && device.LastSeenAt.After(cutoff) {
			continue
		}
		payload := datatypes.JSONMap{}
		if device.LastSeenAt != nil {
			payload["last_seen_at"] = device.LastSeenAt.Format(time.RFC3339)
		}
		candidates = append(candidates, &recodomain.Recommendation{
			ID:        s.genID.Generate(),
			OrgID:     orgID,
			Kind:      recodomain.KindStaleDevice,
			Subject:   device.DeviceID,
			Window:    window,
			Title:     "Device stopped reporting",
			Message:   fmt.Sprintf("%s has not produced data for over 48 hours. Check connectivity and power.", device.DeviceID),
			Payload:   payload,
			CreatedAt: now,
		})
	}

	avg, count, err := s.repo.FeedQuality(ctx, s.db, orgID, now.Add(-lowQualityLookback))
	if err != nil {
		return nil, err
	}
	if count > 0 && avg < lowQualityAvg {
		candidates = append(candidates, &recodomain.Recommendation{
			ID:      s.genID.Generate(),
			OrgID:   orgID,
			Kind:    recodomain.KindLowQualityFeed,
			Subject: "pipeline",
			Window:  window,
			Title:   "Feed quality degraded",
			Message: fmt.Sprintf("Average payload quality over the last 24 hours is %.0f/100. Upstream payloads are missing key fields.", avg),
			Payload: datatypes.JSONMap{
				"avg_quality_score": avg,
				"sample_size":       count,
			},
			CreatedAt: now,
		})
	}

	return candidates, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]recodomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, recodomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectRecommendation, authz.ActionRecommendationView); err != nil {
		return nil, err
	}

	recos, err := s.repo.List(ctx, s.db, orgID, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]recodomain.Response, 0, len(recos))
	for i := range recos {
		resp = append(resp, recodomain.Response{
			ID:        recos[i].ID.String(),
			Kind:      recos[i].Kind,
			Subject:   recos[i].Subject,
			Window:    recos[i].Window,
			Title:     recos[i].Title,
			Message:   recos[i].Message,
			Payload:   map[string]any(recos[i].Payload),
			CreatedAt: recos[i].CreatedAt,
		})
	}
	return resp, nil
}
