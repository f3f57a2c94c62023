package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/config"
	"github.com/insightpulse/scout/internal/orgcontext"
	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
)

type stubBronzeSvc struct {
	bronzedomain.Service

	calls    int
	inserted int
	err      error
	seenOrg  snowflake.ID
}

func (s *stubBronzeSvc) LoadPending(ctx context.Context) (int, error) {
	s.calls++
	s.seenOrg, _ = orgcontext.OrgIDFromContext(ctx)
	return s.inserted, s.err
}

type stubSilverSvc struct {
	silverdomain.Service

	calls    int
	inserted int
	err      error
}

func (s *stubSilverSvc) PromoteNew(ctx context.Context) (int, error) {
	s.calls++
	return s.inserted, s.err
}

type stubRecoSvc struct {
	recodomain.Service

	calls     int
	generated int
}

func (s *stubRecoSvc) Generate(ctx context.Context) (int, error) {
	s.calls++
	return s.generated, nil
}

type recordedAudit struct {
	action    string
	processed any
}

type stubAuditSvc struct {
	auditdomain.Service

	entries []recordedAudit
}

func (s *stubAuditSvc) AuditLog(ctx context.Context, orgID *snowflake.ID, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	s.entries = append(s.entries, recordedAudit{action: action, processed: metadata["processed"]})
	return nil
}

type fixture struct {
	sched  *Scheduler
	bronze *stubBronzeSvc
	silver *stubSilverSvc
	reco   *stubRecoSvc
	audit  *stubAuditSvc
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		bronze: &stubBronzeSvc{},
		silver: &stubSilverSvc{},
		reco:   &stubRecoSvc{},
		audit:  &stubAuditSvc{},
	}
	sched, err := New(Params{
		Log:       zap.NewNop(),
		AppConfig: config.Config{DefaultOrgID: 42},
		Cfg:       cfg,
		Clock:     clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		BronzeSvc: f.bronze,
		SilverSvc: f.silver,
		RecoSvc:   f.reco,
		AuditSvc:  f.audit,
	})
	require.NoError(t, err)
	f.sched = sched
	return f
}

func TestRunOnceRunsJobsInPipelineOrder(t *testing.T) {
	f := newFixture(t, Config{})
	f.bronze.inserted = 3
	f.silver.inserted = 2
	f.reco.generated = 1

	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, 1, f.bronze.calls)
	assert.Equal(t, 1, f.silver.calls)
	assert.Equal(t, 1, f.reco.calls)
	assert.Equal(t, snowflake.ID(42), f.bronze.seenOrg)

	require.Len(t, f.audit.entries, 3)
	assert.Equal(t, "etl.load-pending.completed", f.audit.entries[0].action)
	assert.Equal(t, 3, f.audit.entries[0].processed)
	assert.Equal(t, "etl.promote-new.completed", f.audit.entries[1].action)
	assert.Equal(t, "etl.recommendations.completed", f.audit.entries[2].action)
}

func TestRunOnceJoinsJobErrors(t *testing.T) {
	f := newFixture(t, Config{})
	f.bronze.err = errors.New("boom")

	err := f.sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load-pending")

	// downstream jobs still ran
	assert.Equal(t, 1, f.silver.calls)
	assert.Equal(t, 1, f.reco.calls)
}

func TestRunOnceSwallowsTimeouts(t *testing.T) {
	f := newFixture(t, Config{})
	f.silver.err = context.DeadlineExceeded

	assert.NoError(t, f.sched.RunOnce(context.Background()))
}

func TestRunOnceHonorsJobAllowlist(t *testing.T) {
	f := newFixture(t, Config{EnabledJobs: []string{JobPromoteNew}})

	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, 0, f.bronze.calls)
	assert.Equal(t, 1, f.silver.calls)
	assert.Equal(t, 0, f.reco.calls)
}

func TestRunOnceIdleWithoutDefaultOrg(t *testing.T) {
	f := newFixture(t, Config{})
	f.sched.appCfg.DefaultOrgID = 0

	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, 0, f.bronze.calls)
}

func TestRunOnceSkipsAuditWhenNothingProcessed(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Empty(t, f.audit.entries)
}

func TestNewRejectsMissingServices(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
