package registry

import (
	"github.com/taskdeck/taskdeck/application/components/redis"
	"github.com/taskdeck/taskdeck/application/config"
	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
)

func init() {
	Register(consts.COMPONENT_REDIS, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.Redis == nil || !cfg.Redis.Enabled {
			return false, nil, nil
		}
		factory := redis.NewFactory()
		comp, err := factory.Create(cfg.Redis)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
