package registry

import (
	"github.com/taskdeck/taskdeck/application/components/http_server"
	"github.com/taskdeck/taskdeck/application/config"
	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
)

func init() {
	Register(consts.COMPONENT_HTTP_SERVER, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.HTTPServer == nil || !cfg.HTTPServer.Enabled {
			return false, nil, nil
		}
		if cfg.HTTPServer.ServiceName == "" && cfg.APPInfo != nil {
			cfg.HTTPServer.ServiceName = cfg.APPInfo.APPName
		}
		factory := http_server.NewFactory(c)
		comp, err := factory.Create(cfg.HTTPServer)
		if err != nil {
			return true, nil, err
		}
		// the server span middleware needs the tracer provider installed first
		if cfg.Telemetry != nil && cfg.Telemetry.Enabled {
			if hs, ok := comp.(*http_server.HTTPServerComponent); ok {
				hs.AddDependencies(consts.COMPONENT_TELEMETRY)
			}
		}
		return true, comp, nil
	})
}
