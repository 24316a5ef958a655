package logging

import (
	"fmt"

	"github.com/taskdeck/taskdeck/application/core"
)

// Factory builds the logging component from config.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(cfg interface{}) (core.Component, error) {
	loggingConfig, ok := cfg.(*LoggingConfig)
	if !ok {
		return nil, fmt.Errorf("invalid config type for logging component, expected *LoggingConfig")
	}

	if !loggingConfig.Enabled {
		return nil, fmt.Errorf("logging component is disabled")
	}

	f.setDefaults(loggingConfig)
	if err := f.validate(loggingConfig); err != nil {
		return nil, err
	}

	return NewLoggerComponent(loggingConfig), nil
}

func (f *Factory) setDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}

	if cfg.Output != "stdout" && cfg.Output != "stderr" && cfg.FileConfig == nil {
		cfg.FileConfig = &FileConfig{Dir: "./logs", Filename: "app"}
	}
}

// validate applies explicit rules without hidden defaults. A zero
// rotate_interval with enabled=true means size based rotation.
func (f *Factory) validate(cfg *LoggingConfig) error {
	if cfg.RotateConfig != nil && cfg.RotateConfig.Enabled {
		if cfg.RotateConfig.RotateInterval < 0 {
			return fmt.Errorf("logging.rotate_config.rotate_interval must be >= 0")
		}
		if cfg.RotateConfig.MaxAge < 0 {
			return fmt.Errorf("logging.rotate_config.max_age must be >= 0")
		}
	}
	return nil
}
