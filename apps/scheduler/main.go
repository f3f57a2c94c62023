package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/audit"
	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/brand"
	"github.com/insightpulse/scout/internal/bronze"
	"github.com/insightpulse/scout/internal/cache"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/cloudmetrics"
	"github.com/insightpulse/scout/internal/config"
	"github.com/insightpulse/scout/internal/device"
	"github.com/insightpulse/scout/internal/etl"
	"github.com/insightpulse/scout/internal/gold"
	"github.com/insightpulse/scout/internal/landing"
	"github.com/insightpulse/scout/internal/observability"
	"github.com/insightpulse/scout/internal/product"
	"github.com/insightpulse/scout/internal/ratelimit"
	"github.com/insightpulse/scout/internal/recommendation"
	"github.com/insightpulse/scout/internal/silver"
	"github.com/insightpulse/scout/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,

		authz.Module,
		audit.Module,
		brand.Module,
		product.Module,
		device.Module,
		landing.Module,
		bronze.Module,
		silver.Module,
		gold.Module,
		recommendation.Module,
		ratelimit.Module,
		cloudmetrics.Module,

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
