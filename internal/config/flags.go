package config

import "flag"

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config   string
	Debug    bool
	Name     string
	FlipV    bool
	Settings bool
}

// Register binds the flags to a command's flag set.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Name, "name", "", "Primitive name override")
	fs.BoolVar(&f.FlipV, "flipv", false, "Flip V texture coordinates")
	fs.BoolVar(&f.Settings, "settings", false, "Write the scene settings block")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Name != "" {
		cfg.Export.PrimitiveName = f.Name
		cfg.Export.OverrideName = true
	}
	if f.FlipV {
		cfg.Export.FlipV = true
	}
	if f.Settings {
		cfg.Export.IncludeSettings = true
	}
}
