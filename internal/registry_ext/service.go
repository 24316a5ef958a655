package registry_ext

import (
	"github.com/taskdeck/taskdeck/application/config"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/application/registry"
	"github.com/taskdeck/taskdeck/internal/service"
)

func init() {
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, service.NewTaskService(), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, service.NewAuthService(), nil
	})
}
