package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/config"
	"github.com/insightpulse/scout/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if conn.Dialector.Name() != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		return seed.EnsureMainOrgWithID(conn, cfg.DefaultOrgID)
	}),
)
