package recommendation

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/recommendation/repository"
	"github.com/insightpulse/scout/internal/recommendation/service"
)

var Module = fx.Module("recommendation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
