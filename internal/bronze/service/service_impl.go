package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/config"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	deviceservice "github.com/insightpulse/scout/internal/device/service"
	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
	"github.com/insightpulse/scout/internal/observability/metrics"
	"github.com/insightpulse/scout/internal/orgcontext"
	"github.com/insightpulse/scout/pkg/rls"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         bronzedomain.Repository
	LandingRepo  landingdomain.Repository
	DeviceRepo   devicedomain.Repository
	Authz        authz.Service
	ConfigHolder *config.PipelineConfigHolder `optional:"true"`
	Metrics      *metrics.Metrics             `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         bronzedomain.Repository
	landingRepo  landingdomain.Repository
	deviceRepo   devicedomain.Repository
	authz        authz.Service
	configHolder *config.PipelineConfigHolder
	metrics      *metrics.Metrics
}

func NewService(p Params) bronzedomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("bronze.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		landingRepo:  p.LandingRepo,
		deviceRepo:   p.DeviceRepo,
		authz:        p.Authz,
		configHolder: p.ConfigHolder,
		metrics:      p.Metrics,
	}
}

func (s *Service) LoadPending(ctx context.Context) (int, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, bronzedomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBronze, authz.ActionBronzeLoad); err != nil {
		return 0, err
	}

	batchSize := s.configHolder.Current().LoadBatchSize
	batchEpoch := s.clock.Now().Unix()

	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := rls.WithTenant(tx, int64(orgID)); err != nil {
				return err
			}
		}

		devices, err := s.deviceRepo.List(ctx, tx, orgID)
		if err != nil {
			return err
		}
		registered := make(map[string]struct{}, len(devices))
		for i := range devices {
			registered[devices[i].DeviceID] = struct{}{}
		}

		var cursor snowflake.ID
		counter := 0
		for {
			pending, err := s.landingRepo.ListPending(ctx, tx, orgID, cursor, batchSize)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				break
			}

			for i := range pending {
				raw := &pending[i]
				cursor = raw.ID
				counter++

				record := s.resolve(orgID, raw, devices, batchEpoch, counter)
				wrote, err := s.repo.InsertIfAbsent(ctx, tx, record)
				if err != nil {
					return err
				}
				if !wrote {
					continue
				}
				inserted++

				if _, known := registered[record.DeviceID]; known {
					if err := s.deviceRepo.TouchLastSeen(ctx, tx, orgID, record.DeviceID, record.CapturedAt); err != nil {
						s.log.Warn("device last-seen update failed",
							zap.String("device_id", record.DeviceID),
							zap.Error(err),
						)
					}
				}
			}

			if len(pending) < batchSize {
				break
			}
		}

		// The buffer is emptied even for rows skipped on conflict. A new
		// row whose id collided with an existing bronze record is lost
		// with it; accepted to keep the buffer from growing unbounded.
		return s.landingRepo.DrainAll(ctx, tx, orgID)
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil && inserted > 0 {
		s.metrics.RecordBronzeInserted(ctx, orgID.String(), inserted)
	}
	s.log.Info("landing buffer loaded",
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}

// resolve normalizes one raw record. Every fallback here degrades instead of
// erroring; a malformed payload must never abort the batch.
func (s *Service) resolve(orgID snowflake.ID, raw *landingdomain.RawIngestRecord, devices []devicedomain.Device, batchEpoch int64, counter int) *bronzedomain.BronzeRecord {
	payload := map[string]any(raw.Payload)

	recordID := payloadString(payload, "transaction_id", "id")
	if recordID == "" {
		recordID = syntheticRecordID(batchEpoch, counter)
	}

	deviceID := strings.ToUpper(payloadString(payload, "device_id"))
	if deviceID == "" {
		deviceID = deviceservice.MatchPath(raw.SourcePath, devices)
	}
	if deviceID == "" {
		deviceID = bronzedomain.DeviceUnknown
	}

	capturedAt, ok := parseTimestamp(payloadString(payload, "timestamp"))
	if !ok {
		capturedAt, ok = parseTimestamp(payloadString(payload, "created_at"))
	}
	if !ok {
		capturedAt = raw.ReceivedAt
	}

	return &bronzedomain.BronzeRecord{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		RecordID:     recordID,
		DeviceID:     deviceID,
		CapturedAt:   capturedAt,
		SourceFile:   sourceFileName(raw.SourcePath),
		Payload:      raw.Payload,
		QualityScore: qualityScore(payload, deviceID),
		CreatedAt:    s.clock.Now(),
	}
}

func (s *Service) List(ctx context.Context, limit int) ([]bronzedomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, bronzedomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBronze, authz.ActionBronzeView); err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, s.db, orgID, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]bronzedomain.Response, 0, len(records))
	for i := range records {
		resp = append(resp, toResponse(&records[i]))
	}
	return resp, nil
}

func toResponse(record *bronzedomain.BronzeRecord) bronzedomain.Response {
	return bronzedomain.Response{
		ID:           record.ID.String(),
		RecordID:     record.RecordID,
		DeviceID:     record.DeviceID,
		CapturedAt:   record.CapturedAt,
		SourceFile:   record.SourceFile,
		Payload:      map[string]any(record.Payload),
		QualityScore: record.QualityScore,
		CreatedAt:    record.CreatedAt,
	}
}
