package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/taskdeck/taskdeck/application/consts"
	"gopkg.in/yaml.v3"
)

// Loader reads the config file and decodes the biz_config subtree into
// the caller supplied pointer.
type Loader struct {
	env        string
	configPath string
	bizConfig  any
}

func NewLoader(env string, configPath string) *Loader {
	if env == "" {
		env = consts.ENV_DEVELOPMENT
	}
	if configPath == "" {
		configPath = consts.DEFAULT_CONFIG_PATH
	}
	return &Loader{env: env, configPath: configPath}
}

// SetBizConfig injects the application config pointer, e.g. &MyBizConfig{}.
// Must be called before LoadConfig. Must be a pointer so the decoder
// fills the struct in place.
func (l *Loader) SetBizConfig(b any) {
	if b == nil {
		return
	}
	if reflect.TypeOf(b).Kind() != reflect.Ptr {
		panic("SetBizConfig expects a pointer, e.g. &MyBizConfig{}")
	}
	l.bizConfig = b
}

// LoadConfig parses the whole AppConfig first, then re-decodes the
// biz_config subtree into the biz pointer. Decoding the subtree in one
// pass through interface{} would replace the pointer with a map.
func (l *Loader) LoadConfig() (*AppConfig, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	ext := strings.ToLower(filepath.Ext(l.configPath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if l.bizConfig != nil && cfg.BizConfig != nil {
		if err := l.decodeBizSection(ext, cfg.BizConfig, l.bizConfig); err != nil {
			return nil, fmt.Errorf("decode biz_config failed: %w", err)
		}
		cfg.BizConfig = l.bizConfig
	} else if l.bizConfig != nil && cfg.BizConfig == nil {
		// no biz_config section in the file, keep the caller defaults
		cfg.BizConfig = l.bizConfig
	}

	return &cfg, nil
}

// decodeBizSection round-trips the already parsed subtree into the
// target pointer so zero fields keep their defaults.
func (l *Loader) decodeBizSection(ext string, raw any, target any) error {
	var (
		bytes []byte
		err   error
	)
	switch ext {
	case ".yaml", ".yml":
		bytes, err = yaml.Marshal(raw)
	case ".json":
		bytes, err = json.Marshal(raw)
	default:
		return fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("re-marshal biz_config failed: %w", err)
	}
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bytes, target); err != nil {
			return fmt.Errorf("unmarshal biz_config into target failed: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(bytes, target); err != nil {
			return fmt.Errorf("unmarshal biz_config into target failed: %w", err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
