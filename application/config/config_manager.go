package config

// ConfigManager ties the loader and validator together and owns the
// parsed AppConfig.
type ConfigManager struct {
	configLoader *Loader
	validator    *Validator
	appConfig    *AppConfig
}

// SetBizConfig sets the application config pointer. Must be called
// before LoadConfig.
func (cf *ConfigManager) SetBizConfig(b any) {
	if cf != nil && cf.configLoader != nil {
		cf.configLoader.SetBizConfig(b)
	}
}

// BizConfig returns the raw application config pointer.
func (cf *ConfigManager) BizConfig() any {
	if cf == nil || cf.appConfig == nil {
		return nil
	}
	return cf.appConfig.BizConfig
}

func (cf *ConfigManager) GetConfig() *AppConfig {
	return cf.appConfig
}

func (cf *ConfigManager) LoadConfig() error {

	if err := cf.validator.validateConfigFilePath(cf.configLoader.env, cf.configLoader.configPath); err != nil {
		return err
	}

	config, err := cf.configLoader.LoadConfig()
	if err != nil {
		return err
	}

	if err = cf.validator.ValidateAppConfig(config); err != nil {
		return err
	}

	cf.appConfig = config
	return nil
}

func NewConfigManager(env string, configPath string) *ConfigManager {
	validator := NewValidator()
	loader := NewLoader(env, configPath)

	return &ConfigManager{
		configLoader: loader,
		validator:    validator,
	}
}

// NewConfigManagerWithBiz builds a manager with the biz pointer already set.
func NewConfigManagerWithBiz(env, configPath string, biz any) *ConfigManager {
	cm := NewConfigManager(env, configPath)
	cm.SetBizConfig(biz)
	return cm
}
