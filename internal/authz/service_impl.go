package authz

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
)

//go:embed model.conf
var modelText string

const (
	ObjectLanding        = "landing"
	ObjectBronze         = "bronze"
	ObjectSilver         = "silver"
	ObjectGold           = "gold"
	ObjectBrand          = "brand"
	ObjectProduct        = "product"
	ObjectDevice         = "device"
	ObjectRecommendation = "recommendation"
	ObjectReport         = "report"
	ObjectAPIKey         = "api_key"
	ObjectAuditLog       = "audit_log"
)

const (
	ActionLandingIngest = "landing.ingest"

	ActionBronzeLoad = "bronze.load"
	ActionBronzeView = "bronze.view"

	ActionSilverPromote = "silver.promote"
	ActionSilverView    = "silver.view"

	ActionGoldView = "gold.view"

	ActionBrandView   = "brand.view"
	ActionBrandCreate = "brand.create"
	ActionBrandUpdate = "brand.update"
	ActionBrandDelete = "brand.delete"

	ActionProductView   = "product.view"
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductDelete = "product.delete"

	ActionDeviceView   = "device.view"
	ActionDeviceCreate = "device.create"
	ActionDeviceUpdate = "device.update"
	ActionDeviceDelete = "device.delete"

	ActionRecommendationGenerate = "recommendation.generate"
	ActionRecommendationView     = "recommendation.view"

	ActionReportGenerate = "report.generate"

	ActionAPIKeyView   = "api_key.view"
	ActionAPIKeyCreate = "api_key.create"
	ActionAPIKeyRotate = "api_key.rotate"
	ActionAPIKeyRevoke = "api_key.revoke"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Enforcer *casbin.SyncedEnforcer
	// The audit trail is written through the repository, not the audit
	// service: the audit service itself authorizes reads through this
	// service, so depending on it would cycle.
	AuditRepo auditdomain.Repository `optional:"true"`
}

type ServiceImpl struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	enforcer  *casbin.SyncedEnforcer
	auditRepo auditdomain.Repository
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:        p.DB,
		log:       p.Log.Named("authz.service"),
		genID:     p.GenID,
		enforcer:  p.Enforcer,
		auditRepo: p.AuditRepo,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, orgID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(actor)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, orgID, object, action)
		return err
	}

	domain := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorType, actorID, orgID, object, action)
		return ErrForbidden
	}

	if shouldAuditGrant(action) {
		s.auditGranted(ctx, actorType, actorID, orgID, object, action)
	}
	return nil
}

func (s *ServiceImpl) resolveActor(actor string) (string, string, string, *string, error) {
	if actor == "system" {
		roleName := "role:system"
		return actor, roleName, "system", nil, nil
	}
	if strings.HasPrefix(actor, "api_key:") {
		// API keys act with the system role so the pipeline endpoints work unattended.
		apiKeyIDRaw := strings.TrimPrefix(actor, "api_key:")
		apiKeyID, err := snowflake.ParseString(apiKeyIDRaw)
		if err != nil || apiKeyID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		apiKeyIDStr := apiKeyID.String()
		roleName := "role:system"
		return actor, roleName, "api_key", &apiKeyIDStr, nil
	}
	// Interactive users are authenticated upstream (managed auth) and never
	// reach this service; only system and api_key actors exist here.
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, orgID string, object string, action string) {
	s.auditDecision(ctx, "authz.denied", actorType, actorID, orgID, object, action)
}

func (s *ServiceImpl) auditGranted(ctx context.Context, actorType string, actorID *string, orgID string, object string, action string) {
	s.auditDecision(ctx, "authz.granted", actorType, actorID, orgID, object, action)
}

func (s *ServiceImpl) auditDecision(ctx context.Context, decision string, actorType string, actorID *string, orgID string, object string, action string) {
	if s.auditRepo == nil || s.genID == nil {
		return
	}
	parsedOrgID, err := snowflake.ParseString(orgID)
	if err != nil || parsedOrgID == 0 {
		return
	}
	targetID := "capability"
	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		OrgID:      &parsedOrgID,
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     decision,
		TargetType: "authz",
		TargetID:   &targetID,
		Metadata: datatypes.JSONMap{
			"object":  object,
			"action":  action,
			"actor":   actorType,
			"org_id":  orgID,
			"subject": actorSubject(actorType, actorID),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditRepo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to record authz decision", zap.String("decision", decision), zap.Error(err))
	}
}

func actorSubject(actorType string, actorID *string) string {
	switch actorType {
	case "system":
		return "system"
	case "api_key":
		if actorID != nil && strings.TrimSpace(*actorID) != "" {
			return fmt.Sprintf("api_key:%s", strings.TrimSpace(*actorID))
		}
	}
	return ""
}

func shouldAuditGrant(action string) bool {
	switch action {
	case ActionAPIKeyRotate, ActionAPIKeyRevoke, ActionBrandDelete, ActionProductDelete, ActionDeviceDelete:
		return true
	default:
		return false
	}
}

// seedPolicies grants role:system, the single role behind both actor kinds
// this service resolves: the scheduler's system actor and API-key actors.
// Capability narrowing for keys happens at the scope gate in the server.
func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:system", ObjectLanding, ActionLandingIngest},
		{"role:system", ObjectBronze, ActionBronzeLoad},
		{"role:system", ObjectBronze, ActionBronzeView},
		{"role:system", ObjectSilver, ActionSilverPromote},
		{"role:system", ObjectSilver, ActionSilverView},
		{"role:system", ObjectGold, ActionGoldView},
		{"role:system", ObjectRecommendation, ActionRecommendationGenerate},
		{"role:system", ObjectRecommendation, ActionRecommendationView},
		{"role:system", ObjectReport, ActionReportGenerate},

		{"role:system", ObjectBrand, ActionBrandView},
		{"role:system", ObjectBrand, ActionBrandCreate},
		{"role:system", ObjectBrand, ActionBrandUpdate},
		{"role:system", ObjectBrand, ActionBrandDelete},

		{"role:system", ObjectProduct, ActionProductView},
		{"role:system", ObjectProduct, ActionProductCreate},
		{"role:system", ObjectProduct, ActionProductUpdate},
		{"role:system", ObjectProduct, ActionProductDelete},

		{"role:system", ObjectDevice, ActionDeviceView},
		{"role:system", ObjectDevice, ActionDeviceCreate},
		{"role:system", ObjectDevice, ActionDeviceUpdate},
		{"role:system", ObjectDevice, ActionDeviceDelete},

		{"role:system", ObjectAPIKey, ActionAPIKeyView},
		{"role:system", ObjectAPIKey, ActionAPIKeyCreate},
		{"role:system", ObjectAPIKey, ActionAPIKeyRotate},
		{"role:system", ObjectAPIKey, ActionAPIKeyRevoke},

		{"role:system", ObjectAuditLog, ActionAuditLogView},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
