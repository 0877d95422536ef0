// Package config persists the annotation tool settings as an INI file in
// the user configuration directory, matching the layout the legacy tool
// kept under AlphaControlLab.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/alphacontrollab/datmant"
)

// Directory and file names of the persisted configuration.
const (
	publisher = "AlphaControlLab"
	fileName  = "datmant_config.ini"
)

// Config holds the persisted tool settings.
type Config struct {
	ShowLog        bool   `mapstructure:"show_log"`
	ImageDirectory string `mapstructure:"image_directory"`
	ColorTable     string `mapstructure:"color_table"`
	BrushDiameter  int    `mapstructure:"brush_diameter"`
	UndoDepth      int    `mapstructure:"undo_depth"`
	ColorTolerance int    `mapstructure:"color_tolerance"`
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: user config dir: %w", err)
	}
	return filepath.Join(dir, publisher, fileName), nil
}

// Load reads the configuration from path. A missing file is not an error:
// every setting falls back to its default, so first launches work without
// any setup.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file means a first launch; anything else is real.
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	clampRanges(&cfg)
	return &cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("ini")
	v.Set("show_log", cfg.ShowLog)
	v.Set("image_directory", cfg.ImageDirectory)
	v.Set("color_table", cfg.ColorTable)
	v.Set("brush_diameter", cfg.BrushDiameter)
	v.Set("undo_depth", cfg.UndoDepth)
	v.Set("color_tolerance", cfg.ColorTolerance)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("show_log", false)
	v.SetDefault("image_directory", "")
	v.SetDefault("color_table", "")
	v.SetDefault("brush_diameter", datmant.DefaultBrushDiameter)
	v.SetDefault("undo_depth", datmant.DefaultUndoDepth)
	v.SetDefault("color_tolerance", datmant.DefaultTolerance)
}

// clampRanges pulls hand-edited values back into the ranges the engine
// accepts.
func clampRanges(cfg *Config) {
	if cfg.BrushDiameter < datmant.MinBrushDiameter {
		cfg.BrushDiameter = datmant.MinBrushDiameter
	}
	if cfg.BrushDiameter > datmant.MaxBrushDiameter {
		cfg.BrushDiameter = datmant.MaxBrushDiameter
	}
	if cfg.UndoDepth < 1 {
		cfg.UndoDepth = 1
	}
	if cfg.UndoDepth > datmant.MaxUndoDepth {
		cfg.UndoDepth = datmant.MaxUndoDepth
	}
	if cfg.ColorTolerance < 0 {
		cfg.ColorTolerance = 0
	}
	if cfg.ColorTolerance > 255 {
		cfg.ColorTolerance = 255
	}
}
