package apikey

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/apikey/repository"
	"github.com/insightpulse/scout/internal/apikey/service"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
