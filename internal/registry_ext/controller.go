package registry_ext

import (
	"github.com/taskdeck/taskdeck/application/config"
	appconsts "github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/application/registry"
	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/consts"
)

func init() {
	// http_server must start after the controllers its routes resolve.
	registry.ExtendRuntimeDependencies(appconsts.COMPONENT_HTTP_SERVER,
		consts.COMP_CTRL_TASK, consts.COMP_CTRL_USER, consts.COMP_SVC_AUTH)

	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, api.NewTaskController(env(cfg)), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, api.NewUserController(env(cfg)), nil
	})
}

func env(cfg *config.AppConfig) string {
	if cfg != nil && cfg.APPInfo != nil {
		return cfg.APPInfo.ENV
	}
	return ""
}
