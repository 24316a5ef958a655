package config

import (
	"fmt"

	"github.com/taskdeck/taskdeck/application/consts"
)

// Validator checks the loaded configuration for basic sanity.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

func (v *Validator) ValidateAppConfig(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	return nil
}

func (v *Validator) validateConfigFilePath(env string, path string) error {
	if path == "" {
		return fmt.Errorf("config file path cannot be empty")
	}
	if len(path) > 255 {
		return fmt.Errorf("config file path is too long")
	}
	if !fileExists(path) {
		return fmt.Errorf("config file does not exist: %s", path)
	}
	if !validEnv(env) {
		return fmt.Errorf("unknown running environment: %s", env)
	}
	return nil
}

func validEnv(env string) bool {
	switch env {
	case "", consts.ENV_DEVELOPMENT, consts.ENV_TEST, consts.ENV_PRODUCTION:
		return true
	}
	return false
}
