// Package config handles exporter configuration loading and management.
package config

import "github.com/Faultbox/dxs-export/pkg/dxs"

// Config holds all exporter settings.
type Config struct {
	Logging   LoggingConfig `yaml:"logging"`
	Export    ExportConfig  `yaml:"export"`
	Materials dxs.Catalog   `yaml:"materials"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ExportConfig controls what goes into each written scene.
type ExportConfig struct {
	PrimitiveName    string `yaml:"primitive_name"` // used when the source has no name
	OverrideName     bool   `yaml:"override_name"`  // use PrimitiveName even when it has one
	PrimitiveType    string `yaml:"primitive_type"`
	FlipV            bool   `yaml:"flip_v"`
	IncludeSettings  bool   `yaml:"include_settings"`
	IncludeSkeletons bool   `yaml:"include_skeletons"`
	IncludeLights    bool   `yaml:"include_lights"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Export: ExportConfig{
			PrimitiveName: dxs.DefaultPrimitiveName,
			PrimitiveType: dxs.DefaultPrimitiveType,
		},
		Materials: dxs.DefaultCatalog(),
	}
}
