package landing

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/landing/repository"
	"github.com/insightpulse/scout/internal/landing/service"
)

var Module = fx.Module("landing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
