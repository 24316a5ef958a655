package config

import (
	"github.com/taskdeck/taskdeck/application/components/http_server"
	"github.com/taskdeck/taskdeck/application/components/logging"
	"github.com/taskdeck/taskdeck/application/components/postgresgorm"
	"github.com/taskdeck/taskdeck/application/components/prometheus"
	"github.com/taskdeck/taskdeck/application/components/redis"
	"github.com/taskdeck/taskdeck/application/components/telemetry"
)

// AppConfig mirrors the top level sections of the config file. BizConfig
// holds the application specific subtree and is decoded separately into
// the pointer supplied by the caller.
type AppConfig struct {
	APPInfo      *APPInfo                      `yaml:"app_info" json:"app_info"`
	Logging      *logging.LoggingConfig        `yaml:"logging" json:"logging"`
	HTTPServer   *http_server.HTTPServerConfig `yaml:"http_server" json:"http_server"`
	PostgresGorm *postgresgorm.Config          `yaml:"postgres_gorm" json:"postgres_gorm"`
	Redis        *redis.Config                 `yaml:"redis" json:"redis"`
	Prometheus   *prometheus.Config            `yaml:"prometheus" json:"prometheus"`
	Telemetry    *telemetry.Config             `yaml:"telemetry" json:"telemetry"`
	BizConfig    any                           `yaml:"biz_config" json:"biz_config"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name"`
	ENV     string `yaml:"env" json:"env"`
}
