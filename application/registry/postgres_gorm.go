package registry

import (
	"github.com/taskdeck/taskdeck/application/components/postgresgorm"
	"github.com/taskdeck/taskdeck/application/config"
	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
)

func init() {
	Register(consts.COMPONENT_POSTGRES_GORM, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.PostgresGorm == nil || !cfg.PostgresGorm.Enabled {
			return false, nil, nil
		}
		factory := postgresgorm.NewFactory()
		comp, err := factory.Create(cfg.PostgresGorm)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
