package silver

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/silver/repository"
	"github.com/insightpulse/scout/internal/silver/service"
)

var Module = fx.Module("silver.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
