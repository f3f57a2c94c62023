package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
)

const (
	ETLErrorTypeDeadlineExceeded = "deadline_exceeded"
	ETLErrorTypeAuthorization    = "authorization"
	ETLErrorTypeBusinessRule     = "business_rule"
	ETLErrorTypeDB               = "db"
	ETLErrorTypeUnknown          = "unknown"
)

const (
	ETLJobReasonDeadlineExceeded     = "deadline_exceeded"
	ETLJobReasonDBLockTimeout        = "db_lock_timeout"
	ETLJobReasonSerializationFailure = "serialization_failure"
	ETLJobReasonUniqueViolation      = "unique_violation"
	ETLJobReasonForbidden            = "forbidden"
	ETLJobReasonUnknown              = "unknown"

	ETLBatchDeferredReasonLandingEmpty = "landing_empty"
	ETLBatchDeferredReasonLockHeld     = "lock_held"
)

const (
	ETLResourceLandingRecords      = "landing_records"
	ETLResourceBronzeRecords       = "bronze_records"
	ETLResourceSilverTransactions  = "silver_transactions"
	ETLResourceRecommendations     = "recommendations"
)

// ETLMetrics captures pipeline job health signals for the scheduler.
type ETLMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobTimeouts    *prometheus.CounterVec
	jobErrors      *prometheus.CounterVec
	batchProcessed *prometheus.CounterVec
	batchDeferred  *prometheus.CounterVec
	runLoopLag     prometheus.Observer
}

var (
	etlMetricsOnce sync.Once
	etlMetrics     *ETLMetrics
)

// ETL returns the singleton ETL metrics registry.
func ETL() *ETLMetrics {
	return ETLWithConfig(Config{})
}

// ETLWithConfig returns the singleton ETL metrics registry using config labels.
func ETLWithConfig(cfg Config) *ETLMetrics {
	etlMetricsOnce.Do(func() {
		etlMetrics = newETLMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return etlMetrics
}

// ResetETLMetricsForTest resets the ETL metrics singleton for tests.
func ResetETLMetricsForTest() {
	etlMetricsOnce = sync.Once{}
	etlMetrics = nil
}

func newETLMetrics(registerer prometheus.Registerer, cfg Config) *ETLMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "scout"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scout_etl_job_runs_total",
		Help:        "ETL job runs by name.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "scout_etl_job_duration_seconds",
		Help:        "ETL job latency to protect pipeline freshness.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300, 600, 1800},
		ConstLabels: constLabels,
	}, []string{"job"})
	jobTimeouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scout_etl_job_timeouts_total",
		Help:        "ETL job timeouts that threaten pipeline freshness.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scout_etl_job_errors_total",
		Help:        "ETL job errors by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})
	batchProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scout_etl_batch_processed_total",
		Help:        "ETL batch items processed to gauge pipeline throughput.",
		ConstLabels: constLabels,
	}, []string{"job", "resource"})
	batchDeferred := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scout_etl_batch_deferred_total",
		Help:        "ETL batch deferrals by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "scout_etl_runloop_lag_seconds",
		Help:        "ETL run loop lag beyond the configured interval.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		jobRuns,
		jobDuration,
		jobTimeouts,
		jobErrors,
		batchProcessed,
		batchDeferred,
		runLoopLag,
	)

	return &ETLMetrics{
		jobRuns:        jobRuns,
		jobDuration:    jobDuration,
		jobTimeouts:    jobTimeouts,
		jobErrors:      jobErrors,
		batchProcessed: batchProcessed,
		batchDeferred:  batchDeferred,
		runLoopLag:     runLoopLag,
	}
}

// IncJobRun increments the run counter for an ETL job.
func (m *ETLMetrics) IncJobRun(job string) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

// ObserveJobDuration records ETL job latency in seconds.
func (m *ETLMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// IncJobTimeout increments the timeout counter for the ETL job.
func (m *ETLMetrics) IncJobTimeout(job string) {
	if m == nil || m.jobTimeouts == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

// IncJobError increments the ETL job error counter with classification.
func (m *ETLMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil || m.jobErrors == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifyETLJobReason(err)).Inc()
}

// AddBatchProcessed increments the batch processed counter for a resource by count.
func (m *ETLMetrics) AddBatchProcessed(job, resource string, count int) {
	if m == nil || count <= 0 || m.batchProcessed == nil {
		return
	}
	m.batchProcessed.WithLabelValues(job, resource).Add(float64(count))
}

// IncBatchDeferred increments the batch deferred counter for a job and reason.
func (m *ETLMetrics) IncBatchDeferred(job, reason string) {
	if m == nil || m.batchDeferred == nil {
		return
	}
	m.batchDeferred.WithLabelValues(job, reason).Inc()
}

// ObserveRunLoopLag records lag between the scheduled tick and actual run start.
func (m *ETLMetrics) ObserveRunLoopLag(duration time.Duration) {
	if m == nil || m.runLoopLag == nil {
		return
	}
	lag := duration
	if lag < 0 {
		lag = 0
	}
	m.runLoopLag.Observe(lag.Seconds())
}

// ClassifyETLErrorType returns a low-cardinality error type for logging.
func ClassifyETLErrorType(err error) string {
	if err == nil {
		return ETLErrorTypeUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ETLErrorTypeDeadlineExceeded
	}
	if isAuthorizationError(err) {
		return ETLErrorTypeAuthorization
	}
	if isDBError(err) {
		return ETLErrorTypeDB
	}
	return ETLErrorTypeBusinessRule
}

// IsETLErrorRetryable reports whether the ETL job error should be retried.
func IsETLErrorRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return isDBError(err)
}

// ClassifyETLJobReason maps ETL job errors to low-cardinality reasons.
func ClassifyETLJobReason(err error) string {
	if err == nil {
		return ETLJobReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ETLJobReasonDeadlineExceeded
	}
	if isAuthorizationError(err) {
		return ETLJobReasonForbidden
	}
	if isDBLockTimeout(err) {
		return ETLJobReasonDBLockTimeout
	}
	if isSerializationFailure(err) {
		return ETLJobReasonSerializationFailure
	}
	if isUniqueViolation(err) {
		return ETLJobReasonUniqueViolation
	}
	return ETLJobReasonUnknown
}

func isDBLockTimeout(err error) bool {
	return hasPGCode(err, "55P03")
}

func isSerializationFailure(err error) bool {
	return hasPGCode(err, "40001")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return hasPGCode(err, "23505")
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isAuthorizationError(err error) bool {
	return errors.Is(err, authz.ErrForbidden) ||
		errors.Is(err, authz.ErrInvalidActor) ||
		errors.Is(err, authz.ErrInvalidOrganization) ||
		errors.Is(err, authz.ErrInvalidObject) ||
		errors.Is(err, authz.ErrInvalidAction)
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrMissingWhereClause) ||
		errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
