package cloudmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("cloud.metrics",
	fx.Provide(func() *prometheus.Registry {
		// The process-wide default registry carries the pipeline and HTTP
		// collectors, so pushes see everything the /metrics endpoint sees.
		if reg, ok := prometheus.DefaultRegisterer.(*prometheus.Registry); ok {
			return reg
		}
		return prometheus.NewRegistry()
	}),
	fx.Provide(NewPusher),
)
