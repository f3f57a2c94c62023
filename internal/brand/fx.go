package brand

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/brand/repository"
	"github.com/insightpulse/scout/internal/brand/service"
)

var Module = fx.Module("brand.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
