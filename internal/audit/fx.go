package audit

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/audit/repository"
	"github.com/insightpulse/scout/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
