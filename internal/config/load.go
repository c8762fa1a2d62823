package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "dxsexport.yaml"

// Load loads configuration with priority: defaults < file < flags.
// A nil flags value loads defaults and the discovered file only.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	var configPath string
	if flags != nil {
		configPath = flags.Config
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if flags != nil {
		flags.apply(cfg)
	}

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		UserConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "DXSExport")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "DXSExport")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "dxsexport")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "dxsexport")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Lists in the file, such as material categories, replace the defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}
