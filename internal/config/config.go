package config

import (
	"time"

	"github.com/taskdeck/taskdeck/application"
	"github.com/taskdeck/taskdeck/internal/consts"
)

var bizConfig *BizConfig

func GetBizConfig() *BizConfig {
	return bizConfig
}

// BizConfig is decoded from the biz_config subtree of the runtime
// config file. Fields are populated when the application loads its
// config, so read them at request time, not at init time.
type BizConfig struct {
	Auth  AuthConfig  `yaml:"auth" json:"auth"`
	Tasks TasksConfig `yaml:"tasks" json:"tasks"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" json:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl" json:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost" json:"bcrypt_cost"`
}

type TasksConfig struct {
	// ShowPolicy picks the single-record lookup behavior:
	// owner_scoped (default) or global.
	ShowPolicy string `yaml:"show_policy" json:"show_policy"`
}

func (t TasksConfig) Policy() consts.ShowPolicy {
	if consts.ShowPolicy(t.ShowPolicy) == consts.SHOW_GLOBAL {
		return consts.SHOW_GLOBAL
	}
	return consts.SHOW_OWNER_SCOPED
}

func init() {
	bizConfig = &BizConfig{
		Auth: AuthConfig{
			TokenTTL:   time.Hour,
			BcryptCost: 10,
		},
		Tasks: TasksConfig{ShowPolicy: string(consts.SHOW_OWNER_SCOPED)},
	}
	app := application.GetApp()
	app.SetBizConfig(bizConfig)
}
