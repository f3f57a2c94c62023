package gold

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/gold/repository"
	"github.com/insightpulse/scout/internal/gold/service"
)

var Module = fx.Module("gold.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
