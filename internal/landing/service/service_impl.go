package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/clock"
	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
	"github.com/insightpulse/scout/internal/observability/metrics"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    landingdomain.Repository
	Authz   authz.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    landingdomain.Repository
	authz   authz.Service
	metrics *metrics.Metrics
}

func NewService(p Params) landingdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("landing.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		authz:   p.Authz,
		metrics: p.Metrics,
	}
}

func (s *Service) Append(ctx context.Context, req landingdomain.AppendRequest) (*landingdomain.AppendResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, landingdomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectLanding, authz.ActionLandingIngest); err != nil {
		return nil, err
	}

	sourcePath := strings.TrimSpace(req.SourcePath)
	if sourcePath == "" {
		return nil, landingdomain.ErrInvalidSourcePath
	}

	record := &landingdomain.RawIngestRecord{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		SourcePath: sourcePath,
		ReceivedAt: s.clock.Now(),
	}
	if len(req.Payload) > 0 {
		record.Payload = datatypes.JSONMap(req.Payload)
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordIngestAccepted(ctx, orgID.String(), payloadDevice(req.Payload))
	}

	s.log.Debug("payload buffered",
		zap.String("record_id", record.ID.String()),
		zap.String("source_path", sourcePath),
	)

	return &landingdomain.AppendResponse{
		ID:         record.ID.String(),
		ReceivedAt: record.ReceivedAt,
	}, nil
}

func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, landingdomain.ErrInvalidOrganization
	}
	return s.repo.Count(ctx, s.db, orgID)
}

func payloadDevice(payload map[string]any) string {
	if value, ok := payload["device_id"].(string); ok && strings.TrimSpace(value) != "" {
		return strings.ToUpper(strings.TrimSpace(value))
	}
	return "unknown"
}
