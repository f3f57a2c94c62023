package product

import (
	"go.uber.org/fx"

	"github.com/insightpulse/scout/internal/product/repository"
	"github.com/insightpulse/scout/internal/product/service"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
