package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
)

func TestClassifyETLJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: ETLJobReasonDeadlineExceeded,
		},
		{
			name: "forbidden",
			err:  authz.ErrForbidden,
			want: ETLJobReasonForbidden,
		},
		{
			name: "db_lock_timeout",
			err:  &pgconn.PgError{Code: "55P03"},
			want: ETLJobReasonDBLockTimeout,
		},
		{
			name: "serialization_failure",
			err:  &pgconn.PgError{Code: "40001"},
			want: ETLJobReasonSerializationFailure,
		},
		{
			name: "unique_violation",
			err:  gorm.ErrDuplicatedKey,
			want: ETLJobReasonUniqueViolation,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: ETLJobReasonUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyETLJobReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAddBatchProcessed(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newETLMetrics(registry, Config{
		ServiceName: "scout",
		Environment: "test",
	})

	metrics.AddBatchProcessed("load_pending", ETLResourceBronzeRecords, 3)

	got := testutil.ToFloat64(metrics.batchProcessed.WithLabelValues("load_pending", ETLResourceBronzeRecords))
	if got != 3 {
		t.Fatalf("expected processed count 3, got %v", got)
	}
}

