package etl

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("etl.scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
)

// Start hooks the run loop into the app lifecycle. The API binary omits
// this invoke so only the scheduler binary ticks the pipeline.
func Start(lc fx.Lifecycle, sched *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sched.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
