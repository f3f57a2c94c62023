package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/config"
	"github.com/insightpulse/scout/internal/observability/metrics"
	"github.com/insightpulse/scout/internal/orgcontext"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
	"github.com/insightpulse/scout/pkg/rls"
)

// pesoPattern is the strict numeric shape accepted for monetary values:
// digits with an optional fractional part, no sign, no separators. Anything
// else degrades to null.
var pesoPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         silverdomain.Repository
	BronzeRepo   bronzedomain.Repository
	BrandSvc     branddomain.Service
	ProductSvc   productdomain.Service
	Authz        authz.Service
	ConfigHolder *config.PipelineConfigHolder `optional:"true"`
	Metrics      *metrics.Metrics             `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         silverdomain.Repository
	bronzeRepo   bronzedomain.Repository
	brandSvc     branddomain.Service
	productSvc   productdomain.Service
	authz        authz.Service
	configHolder *config.PipelineConfigHolder
	metrics      *metrics.Metrics
}

func NewService(p Params) silverdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("silver.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		bronzeRepo:   p.BronzeRepo,
		brandSvc:     p.BrandSvc,
		productSvc:   p.ProductSvc,
		authz:        p.Authz,
		configHolder: p.ConfigHolder,
		metrics:      p.Metrics,
	}
}

func (s *Service) PromoteNew(ctx context.Context) (int, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, silverdomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectSilver, authz.ActionSilverPromote); err != nil {
		return 0, err
	}

	batchSize := s.configHolder.Current().PromoteBatchSize

	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := rls.WithTenant(tx, int64(orgID)); err != nil {
				return err
			}
		}

		// Deduplicates candidates within the whole pass, not just within
		// one batch: two bronze rows deriving the same transaction id must
		// not trigger two insert attempts.
		seen := make(map[string]struct{})

		var cursor snowflake.ID
		for {
			records, err := s.bronzeRepo.ListAfter(ctx, tx, orgID, cursor, batchSize)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				break
			}

			candidateIDs := make([]string, 0, len(records))
			for i := range records {
				candidateIDs = append(candidateIDs, deriveTransactionID(&records[i]))
			}
			existing, err := s.repo.ExistingTransactionIDs(ctx, tx, orgID, candidateIDs)
			if err != nil {
				return err
			}

			for i := range records {
				record := &records[i]
				cursor = record.ID

				txID := deriveTransactionID(record)
				if _, done := existing[txID]; done {
					continue
				}
				if _, dup := seen[txID]; dup {
					continue
				}
				seen[txID] = struct{}{}

				txn := s.project(ctx, orgID, record, txID)
				wrote, err := s.repo.InsertIfAbsent(ctx, tx, txn)
				if err != nil {
					return err
				}
				if wrote {
					inserted++
				}
			}

			if len(records) < batchSize {
				break
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil && inserted > 0 {
		s.metrics.RecordSilverInserted(ctx, orgID.String(), inserted)
	}
	s.log.Info("bronze records promoted",
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}

// project shapes one bronze record into a silver transaction. Coercion
// failures degrade to null; this layer normalizes shape, it does not
// validate business content.
func (s *Service) project(ctx context.Context, orgID snowflake.ID, record *bronzedomain.BronzeRecord, txID string) *silverdomain.SilverTransaction {
	payload := map[string]any(record.Payload)

	txn := &silverdomain.SilverTransaction{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		TransactionID: txID,
		StoreID:       optionalString(payload, "store_id"),
		Timestamp:     record.CapturedAt,
		BrandName:     optionalString(payload, "brand_name"),
		PesoValue:     parsePeso(payload, "peso_value"),
		Region:        silverdomain.DefaultRegion,
		DeviceID:      record.DeviceID,
		Location:      optionalString(payload, "location"),
		CreatedAt:     s.clock.Now(),
	}

	if region := payloadField(payload, "region"); region != "" {
		txn.Region = region
	}

	txn.ProductCategory = optionalString(payload, "product_category")
	if txn.ProductCategory == nil {
		if productName := payloadField(payload, "product_name"); productName != "" {
			if category, err := s.productSvc.Classify(ctx, productName); err == nil && category != "" {
				txn.ProductCategory = &category
			}
		}
	}

	if txn.BrandName != nil {
		match, err := s.brandSvc.Resolve(ctx, *txn.BrandName)
		if err != nil {
			s.log.Warn("brand resolution failed",
				zap.String("transaction_id", txID),
				zap.Error(err),
			)
		} else if match != nil && match.Brand != nil {
			brandID := match.Brand.ID
			confidence := match.Confidence
			txn.BrandID = &brandID
			txn.BrandConfidence = &confidence
		}
	}

	return txn
}

// deriveTransactionID is the payload's explicit id when present, else the
// bronze record's own natural key.
func deriveTransactionID(record *bronzedomain.BronzeRecord) string {
	if id := payloadField(map[string]any(record.Payload), "transaction_id"); id != "" {
		return id
	}
	return record.RecordID
}

func payloadField(payload map[string]any, key string) string {
	switch value := payload[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return ""
}

func optionalString(payload map[string]any, key string) *string {
	if value := payloadField(payload, key); value != "" {
		return &value
	}
	return nil
}

// parsePeso accepts numeric payload values directly and strings only when
// they match the strict pattern. Malformed input returns nil, never an error.
func parsePeso(payload map[string]any, key string) *float64 {
	switch value := payload[key].(type) {
	case float64:
		if value >= 0 {
			return &value
		}
	case string:
		if !pesoPattern.MatchString(value) {
			return nil
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

func (s *Service) List(ctx context.Context, limit int) ([]silverdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, silverdomain.ErrInvalidOrganization
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectSilver, authz.ActionSilverView); err != nil {
		return nil, err
	}

	txns, err := s.repo.List(ctx, s.db, orgID, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]silverdomain.Response, 0, len(txns))
	for i := range txns {
		resp = append(resp, toResponse(&txns[i]))
	}
	return resp, nil
}

func toResponse(txn *silverdomain.SilverTransaction) silverdomain.Response {
	resp := silverdomain.Response{
		ID:              txn.ID.String(),
		TransactionID:   txn.TransactionID,
		StoreID:         txn.StoreID,
		Timestamp:       txn.Timestamp,
		BrandName:       txn.BrandName,
		BrandConfidence: txn.BrandConfidence,
		PesoValue:       txn.PesoValue,
		Region:          txn.Region,
		DeviceID:        txn.DeviceID,
		Location:        txn.Location,
		ProductCategory: txn.ProductCategory,
		CreatedAt:       txn.CreatedAt,
	}
	if txn.BrandID != nil {
		value := txn.BrandID.String()
		resp.BrandID = &value
	}
	return resp
}
