package device

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/device/repository"
	"github.com/insightpulse/scout/internal/device/service"
)

var Module = fx.Module("device.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
