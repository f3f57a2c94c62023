package etl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	"github.com/insightpulse/scout/internal/auditcontext"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/cloudmetrics"
	"github.com/insightpulse/scout/internal/config"
	obsmetrics "github.com/insightpulse/scout/internal/observability/metrics"
	"github.com/insightpulse/scout/internal/orgcontext"
	"github.com/insightpulse/scout/internal/ratelimit"
	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
	"github.com/insightpulse/scout/pkg/telemetry/correlation"
)

var ErrInvalidParams = errors.New("invalid_scheduler_params")

const (
	JobLoadPending     = "load-pending"
	JobPromoteNew      = "promote-new"
	JobRecommendations = "recommendations"
	JobMetricsPush     = "metrics-push"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	AppConfig config.Config
	Cfg       Config                       `optional:"true"`
	Holder    *config.PipelineConfigHolder `optional:"true"`
	Clock     clock.Clock

	BronzeSvc bronzedomain.Service
	SilverSvc silverdomain.Service
	RecoSvc   recodomain.Service
	AuditSvc  auditdomain.Service

	Limiter  *ratelimit.IngestLimiter `optional:"true"`
	Pusher   cloudmetrics.Pusher      `optional:"true"`
	Registry *prometheus.Registry     `optional:"true"`
}

// Scheduler drives the medallion pipeline: landing to bronze, bronze to
// silver, then recommendation generation. Every job is a retryable no-op
// when nothing is pending, so the loop just runs everything each tick.
type Scheduler struct {
	log       *zap.Logger
	appCfg    config.Config
	cfg       Config
	holder    *config.PipelineConfigHolder
	clock     clock.Clock
	bronzeSvc bronzedomain.Service
	silverSvc silverdomain.Service
	recoSvc   recodomain.Service
	auditSvc  auditdomain.Service
	limiter   *ratelimit.IngestLimiter
	pusher    cloudmetrics.Pusher
	registry  *prometheus.Registry
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.BronzeSvc == nil || p.SilverSvc == nil || p.RecoSvc == nil || p.AuditSvc == nil {
		return nil, ErrInvalidParams
	}
	return &Scheduler{
		log:       p.Log.Named("etl.scheduler").With(zap.String("component", "scheduler")),
		appCfg:    p.AppConfig,
		cfg:       p.Cfg.withDefaults(),
		holder:    p.Holder,
		clock:     p.Clock,
		bronzeSvc: p.BronzeSvc,
		silverSvc: p.SilverSvc,
		recoSvc:   p.RecoSvc,
		auditSvc:  p.AuditSvc,
		limiter:   p.Limiter,
		pusher:    p.Pusher,
		registry:  p.Registry,
	}, nil
}

// RunOnce executes every enabled job once for the default organization.
// Job failures are joined, never fatal; the next tick retries.
func (s *Scheduler) RunOnce(parent context.Context) error {
	orgID := snowflake.ID(s.appCfg.DefaultOrgID)
	if orgID == 0 {
		s.log.Warn("scheduler idle: no default organization configured")
		return nil
	}

	ctx := orgcontext.WithOrgID(parent, orgID)
	ctx = auditcontext.WithActor(ctx, string(auditdomain.ActorTypeSystem), "scheduler")
	ctx, runID := correlation.EnsureCorrelationID(ctx)
	s.log.Debug("scheduler run starting", zap.String("run_id", runID))

	pipeline := s.holder.Current()
	timeout := pipeline.JobTimeout

	var err error
	jobs := []struct {
		Name     string
		Resource string
		Run      func(context.Context) (int, error)
	}{
		{JobLoadPending, obsmetrics.ETLResourceBronzeRecords, s.bronzeSvc.LoadPending},
		{JobPromoteNew, obsmetrics.ETLResourceSilverTransactions, s.silverSvc.PromoteNew},
		{JobRecommendations, obsmetrics.ETLResourceRecommendations, s.recoSvc.Generate},
	}
	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(ctx, orgID, job.Name, job.Resource, timeout, job.Run))
	}

	if s.pusher != nil && s.isJobEnabled(JobMetricsPush) {
		err = errors.Join(err, s.runJob(ctx, orgID, JobMetricsPush, "", timeout, func(ctx context.Context) (int, error) {
			return 0, s.pusher.Push(ctx, s.registry)
		}))
	}

	return err
}

func (s *Scheduler) runJob(
	parent context.Context,
	orgID snowflake.ID,
	name string,
	resource string,
	timeout time.Duration,
	fn func(ctx context.Context) (int, error),
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	etlMetrics := obsmetrics.ETL()
	etlMetrics.IncJobRun(name)
	log := s.log.With(zap.String("job", name), zap.String("org_id", orgID.String()))

	release, acquired, err := s.acquireJobLock(ctx, name, orgID)
	if err != nil {
		log.Warn("job lock check failed, proceeding without lock", zap.Error(err))
	} else if !acquired {
		etlMetrics.IncBatchDeferred(name, obsmetrics.ETLBatchDeferredReasonLockHeld)
		log.Debug("job skipped: lock held by another worker")
		return nil
	}
	if release != nil {
		defer release()
	}

	processed, err := fn(ctx)
	etlMetrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if processed > 0 && resource != "" {
		etlMetrics.AddBatchProcessed(name, resource, processed)
		s.recordJobAudit(parent, orgID, name, processed)
	}
	if err == nil {
		log.Debug("job completed", zap.Int("processed", processed))
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		etlMetrics.IncJobTimeout(name)
		etlMetrics.IncJobError(name, err)
		log.Warn("job timed out", zap.Duration("timeout", timeout), zap.Error(err))
		return nil
	}

	etlMetrics.IncJobError(name, err)
	log.Error("job failed", zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// acquireJobLock takes the shared redis lock when rate limiting is
// configured. Without redis there is a single worker, so no lock.
func (s *Scheduler) acquireJobLock(ctx context.Context, job string, orgID snowflake.ID) (func(), bool, error) {
	if !s.limiter.Enabled() {
		return nil, true, nil
	}
	token, acquired, err := s.limiter.TryJobLock(ctx, job, orgID.String(), s.cfg.LockTTL)
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}
	release := func() {
		if err := s.limiter.ReleaseJobLock(context.WithoutCancel(ctx), job, orgID.String(), token); err != nil {
			s.log.Warn("job lock release failed", zap.String("job", job), zap.Error(err))
		}
	}
	return release, true, nil
}

func (s *Scheduler) recordJobAudit(ctx context.Context, orgID snowflake.ID, job string, processed int) {
	action := "etl." + job + ".completed"
	metadata := map[string]any{"processed": processed}
	if runID := correlation.ExtractCorrelationID(ctx); runID != "" {
		metadata["correlation_id"] = runID
	}
	if err := s.auditSvc.AuditLog(ctx, &orgID, string(auditdomain.ActorTypeSystem), nil, action, "etl_job", &job, metadata); err != nil {
		s.log.Warn("job audit write failed", zap.String("job", job), zap.Error(err))
	}
}

// RunForever ticks at the configured interval until the context ends.
func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.holder.Current().RunInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	nextRun := time.Now().Add(interval)
	etlMetrics := obsmetrics.ETL()

	for {
		if lag := time.Since(nextRun); lag > 0 {
			etlMetrics.ObserveRunLoopLag(lag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(interval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// honor interval changes from a config reload
		if next := s.holder.Current().RunInterval; next != interval && next > 0 {
			interval = next
			ticker.Reset(interval)
		}
	}
}

func (s *Scheduler) isJobEnabled(name string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, name) {
			return true
		}
	}
	return false
}
