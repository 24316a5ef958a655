package logging

import "time"

type LoggingConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	Level        string        `yaml:"level" json:"level"`
	Format       string        `yaml:"format" json:"format"`
	Output       string        `yaml:"output" json:"output"`
	FileConfig   *FileConfig   `yaml:"file_config,omitempty" json:"file_config,omitempty"`
	RotateConfig *RotateConfig `yaml:"rotate_config,omitempty" json:"rotate_config,omitempty"`
}

type FileConfig struct {
	Dir      string `yaml:"dir" json:"dir"`
	Filename string `yaml:"filename" json:"filename"` // file name prefix, e.g. "app"
}

type RotateConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	RotateInterval time.Duration `yaml:"rotate_interval" json:"rotate_interval"` // 0 means size based rotation
	MaxAge         time.Duration `yaml:"max_age" json:"max_age"`
	CleanupEnabled bool          `yaml:"cleanup_enabled" json:"cleanup_enabled"`
}
