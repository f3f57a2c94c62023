package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apikeydomain "github.com/insightpulse/scout/internal/apikey/domain"
	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	"github.com/insightpulse/scout/internal/authz"
	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	"github.com/insightpulse/scout/internal/config"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
	"github.com/insightpulse/scout/internal/orgcontext"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
	"github.com/insightpulse/scout/internal/report"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
)

type stubLandingSvc struct {
	landingdomain.Service

	lastAppend *landingdomain.AppendRequest
	lastOrg    snowflake.ID
}

func (s *stubLandingSvc) Append(ctx context.Context, req landingdomain.AppendRequest) (*landingdomain.AppendResponse, error) {
	s.lastAppend = &req
	s.lastOrg, _ = orgcontext.OrgIDFromContext(ctx)
	return &landingdomain.AppendResponse{ID: "1", ReceivedAt: time.Unix(0, 0).UTC()}, nil
}

type stubBronzeSvc struct {
	bronzedomain.Service

	inserted int
	err      error
}

func (s *stubBronzeSvc) LoadPending(ctx context.Context) (int, error) {
	return s.inserted, s.err
}

type stubSilverSvc struct {
	silverdomain.Service

	inserted int
}

func (s *stubSilverSvc) PromoteNew(ctx context.Context) (int, error) {
	return s.inserted, nil
}

type stubGoldSvc struct {
	golddomain.Service

	daily []golddomain.DailyRevenueRow
	err   error
}

func (s *stubGoldSvc) DailyRevenue(ctx context.Context, query golddomain.Query) ([]golddomain.DailyRevenueRow, error) {
	return s.daily, s.err
}

type stubRecoSvc struct {
	recodomain.Service
}

type stubReportSvc struct {
	report.Service
}

type stubBrandSvc struct {
	branddomain.Service
}

type stubProductSvc struct {
	productdomain.Service
}

type stubDeviceSvc struct {
	devicedomain.Service
}

type stubAPIKeySvc struct {
	apikeydomain.Service
}

type stubAuditSvc struct {
	auditdomain.Service
}

type allowAll struct {
	authz.Service
}

func (allowAll) Authorize(ctx context.Context, actor, orgID, object, action string) error {
	return nil
}

type testHarness struct {
	server  *Server
	db      *gorm.DB
	orgID   snowflake.ID
	landing *stubLandingSvc
	bronze  *stubBronzeSvc
	silver  *stubSilverSvc
	gold    *stubGoldSvc
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&apikeydomain.APIKey{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	h := &testHarness{
		db:      db,
		orgID:   node.Generate(),
		landing: &stubLandingSvc{},
		bronze:  &stubBronzeSvc{},
		silver:  &stubSilverSvc{},
		gold:    &stubGoldSvc{},
	}
	h.server = NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{},
		DB:         db,
		GenID:      node,
		LandingSvc: h.landing,
		BronzeSvc:  h.bronze,
		SilverSvc:  h.silver,
		GoldSvc:    h.gold,
		RecoSvc:    &stubRecoSvc{},
		ReportSvc:  &stubReportSvc{},
		BrandSvc:   &stubBrandSvc{},
		ProductSvc: &stubProductSvc{},
		DeviceSvc:  &stubDeviceSvc{},
		APIKeySvc:  &stubAPIKeySvc{},
		AuditSvc:   &stubAuditSvc{},
		AuthzSvc:   allowAll{},
	})
	return h
}

// issueKey inserts an active API key row and returns the bearer secret.
func (h *testHarness) issueKey(t *testing.T, scopes ...string) string {
	t.Helper()
	secret := "sk_test_" + snowflake.ID(time.Now().UnixNano()).String()
	now := time.Now().UTC()
	key := apikeydomain.APIKey{
		ID:        snowflake.ID(time.Now().UnixNano()),
		OrgID:     h.orgID,
		KeyID:     "key_" + snowflake.ID(time.Now().UnixNano()).String(),
		Name:      "test",
		Scopes:    pq.StringArray(scopes),
		KeyHash:   apikeydomain.HashAPIKey(secret),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, h.db.Create(&key).Error)
	return secret
}

func (h *testHarness) request(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.server.Engine().ServeHTTP(w, req)
	return w
}
