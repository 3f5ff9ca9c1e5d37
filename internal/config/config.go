// Package config handles meshtool configuration loading and management.
package config

import (
	"go.uber.org/zap"

	"github.com/Faultbox/simplemesh/pkg/mesh"
)

// Config holds all meshtool settings.
type Config struct {
	Tolerances mesh.Tolerances `yaml:"tolerances"`
	Hull       HullConfig      `yaml:"hull"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// HullConfig holds Quickhull settings.
type HullConfig struct {
	// Tolerance is the plane distance tolerance; 0 derives it from the input.
	Tolerance float64 `yaml:"tolerance"`
	// MinPoints rejects clouds smaller than this before running the hull.
	MinPoints int `yaml:"min_points"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	JSON       bool   `yaml:"json"` // JSON lines in the log file
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Tolerances: mesh.DefaultTolerances(),
		Hull: HullConfig{
			Tolerance: 0,
			MinPoints: 4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// MeshOptions converts the settings into options for mesh construction.
func (c *Config) MeshOptions(log *zap.Logger) mesh.Options {
	return mesh.Options{
		Tolerances:    c.Tolerances,
		HullTolerance: c.Hull.Tolerance,
		Logger:        log,
	}
}
