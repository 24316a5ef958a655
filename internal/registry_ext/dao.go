package registry_ext

import (
	"github.com/taskdeck/taskdeck/application/config"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/application/registry"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/dao"
)

func init() {
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, dao.NewTaskDao(consts.DATASOURCE), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, dao.NewUserDao(consts.DATASOURCE), nil
	})
}
