package cloudmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	dto "github.com/prometheus/client_model/go"
)

func TestBuildRemoteWriteSeriesKeepsCountersAndGauges(t *testing.T) {
	families := []*dto.MetricFamily{
		{
			Name: proto.String("scout_etl_job_runs_total"),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{
				Label:   []*dto.LabelPair{{Name: proto.String("job"), Value: proto.String("load-pending")}},
				Counter: &dto.Counter{Value: proto.Float64(7)},
			}},
		},
		{
			Name: proto.String("scout_etl_job_duration_seconds"),
			Type: dto.MetricType_HISTOGRAM.Enum(),
			Metric: []*dto.Metric{{
				Histogram: &dto.Histogram{},
			}},
		},
	}

	series := buildRemoteWriteSeries(families, 1700000000000)
	require.Len(t, series, 1)

	assert.Equal(t, "__name__", series[0].Labels[0].Name)
	assert.Equal(t, "scout_etl_job_runs_total", series[0].Labels[0].Value)
	assert.Equal(t, "job", series[0].Labels[1].Name)
	require.Len(t, series[0].Samples, 1)
	assert.Equal(t, 7.0, series[0].Samples[0].Value)
	assert.Equal(t, int64(1700000000000), series[0].Samples[0].Timestamp)
}

func TestBuildRemoteWriteSeriesEmptyInput(t *testing.T) {
	assert.Empty(t, buildRemoteWriteSeries(nil, 0))
}
