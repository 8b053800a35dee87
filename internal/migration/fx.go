package migration

import (
	"github.com/tokenlens/tokenlens/internal/config"
	tagdomain "github.com/tokenlens/tokenlens/internal/tag/domain"
	usagedomain "github.com/tokenlens/tokenlens/internal/usage/domain"
	userdomain "github.com/tokenlens/tokenlens/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		return conn.AutoMigrate(
			&userdomain.User{},
			&tagdomain.Tag{},
			&usagedomain.DailyUsage{},
			&usagedomain.ModelBreakdown{},
		)
	}),
)
