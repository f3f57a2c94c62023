package bronze

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/bronze/repository"
	"github.com/insightpulse/scout/internal/bronze/service"
)

var Module = fx.Module("bronze.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
