package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/cache"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/config"
	"github.com/insightpulse/scout/internal/etl"
	"github.com/insightpulse/scout/internal/migration"
	"github.com/insightpulse/scout/internal/observability"
	"github.com/insightpulse/scout/internal/server"
	"github.com/insightpulse/scout/pkg/db"
)

// The single-binary install: API, in-process scheduler, and startup
// migrations together.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,

		migration.Module,
		server.Module,

		etl.Module,
		fx.Invoke(etl.Start),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
