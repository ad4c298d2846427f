package migration

import (
	"github.com/smallbiznis/shipguard/internal/config"
	invoicedomain "github.com/smallbiznis/shipguard/internal/invoice/domain"
	saledomain "github.com/smallbiznis/shipguard/internal/sale/domain"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned SQL migrations target postgres. Other dialects
			// (local mysql, sqlite smoke setups) get the schema from the
			// model definitions directly.
			return conn.AutoMigrate(
				&storedomain.Store{},
				&storedomain.StoreSettings{},
				&saledomain.Sale{},
				&invoicedomain.Invoice{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
