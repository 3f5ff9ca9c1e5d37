package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/simplemesh/pkg/mesh"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Tolerances.MergeThreshold != mesh.MergeThreshold {
		t.Errorf("expected merge threshold %g, got %g", mesh.MergeThreshold, cfg.Tolerances.MergeThreshold)
	}
	if cfg.Tolerances.ZeroArea != mesh.ZeroArea {
		t.Errorf("expected zero area %g, got %g", mesh.ZeroArea, cfg.Tolerances.ZeroArea)
	}
	if cfg.Tolerances.Planar != mesh.Planar {
		t.Errorf("expected planar %g, got %g", mesh.Planar, cfg.Tolerances.Planar)
	}
	if cfg.Hull.Tolerance != 0 {
		t.Errorf("expected derived hull tolerance, got %g", cfg.Hull.Tolerance)
	}
	if cfg.Hull.MinPoints != 4 {
		t.Errorf("expected min points 4, got %d", cfg.Hull.MinPoints)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshtool.yaml")

	yamlContent := `
tolerances:
  merge_threshold: 0.001
  planar: 0.0001

hull:
  tolerance: 1e-9
  min_points: 8

logging:
  level: "debug"
  log_file: "meshtool.log"
  json: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tolerances.MergeThreshold != 0.001 {
		t.Errorf("expected merge threshold 0.001, got %g", cfg.Tolerances.MergeThreshold)
	}
	if cfg.Tolerances.Planar != 0.0001 {
		t.Errorf("expected planar 0.0001, got %g", cfg.Tolerances.Planar)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Tolerances.ZeroArea != mesh.ZeroArea {
		t.Errorf("expected zero area to keep default %g, got %g", mesh.ZeroArea, cfg.Tolerances.ZeroArea)
	}
	if cfg.Hull.Tolerance != 1e-9 {
		t.Errorf("expected hull tolerance 1e-9, got %g", cfg.Hull.Tolerance)
	}
	if cfg.Hull.MinPoints != 8 {
		t.Errorf("expected min points 8, got %d", cfg.Hull.MinPoints)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshtool.log" {
		t.Errorf("expected log file 'meshtool.log', got %s", cfg.Logging.LogFile)
	}
	if !cfg.Logging.JSON {
		t.Error("expected json logging to be enabled")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("expected max size to keep default 10, got %d", cfg.Logging.MaxSizeMB)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
tolerances:
  merge_threshold: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/meshtool.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadExplicitPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(configPath, []byte("tolerances:\n  zero_area: 0.5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	flagConfig = configPath
	defer func() { flagConfig = "" }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Tolerances.ZeroArea != 0.5 {
		t.Errorf("expected zero area 0.5, got %g", cfg.Tolerances.ZeroArea)
	}
}

func TestLoadRejectsBadTolerance(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("tolerances:\n  planar: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	flagConfig = configPath
	defer func() { flagConfig = "" }()

	_, err := Load()
	if !errors.Is(err, ErrInvalidTolerance) {
		t.Errorf("Load() error = %v, want %v", err, ErrInvalidTolerance)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "meshtool.yaml")
	if err := os.WriteFile(configPath, []byte("hull:\n  min_points: 5\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find meshtool.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { flagDebug = false },
		},
		{
			name: "tolerance flags",
			setup: func() {
				flagMerge = 1e-4
				flagPlanar = 1e-3
				flagZeroArea = 1e-8
			},
			verify: func(cfg *Config) {
				if cfg.Tolerances.MergeThreshold != 1e-4 {
					t.Errorf("expected merge threshold 1e-4, got %g", cfg.Tolerances.MergeThreshold)
				}
				if cfg.Tolerances.Planar != 1e-3 {
					t.Errorf("expected planar 1e-3, got %g", cfg.Tolerances.Planar)
				}
				if cfg.Tolerances.ZeroArea != 1e-8 {
					t.Errorf("expected zero area 1e-8, got %g", cfg.Tolerances.ZeroArea)
				}
			},
			teardown: func() {
				flagMerge, flagPlanar, flagZeroArea = 0, 0, 0
			},
		},
		{
			name:  "hull tolerance flag",
			setup: func() { flagHullTol = 1e-6 },
			verify: func(cfg *Config) {
				if cfg.Hull.Tolerance != 1e-6 {
					t.Errorf("expected hull tolerance 1e-6, got %g", cfg.Hull.Tolerance)
				}
			},
			teardown: func() { flagHullTol = 0 },
		},
		{
			name:  "log file flag",
			setup: func() { flagLogFile = "/tmp/meshtool.log" },
			verify: func(cfg *Config) {
				if cfg.Logging.LogFile != "/tmp/meshtool.log" {
					t.Errorf("expected log file /tmp/meshtool.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { flagLogFile = "" },
		},
		{
			name:  "no flags keep defaults",
			setup: func() {},
			verify: func(cfg *Config) {
				if *cfg != *Default() {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
			teardown: func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestRegisterFlags(t *testing.T) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	RegisterFlags(fs)
	defer func() {
		flagConfig, flagDebug, flagMerge = "", false, 0
	}()

	if err := fs.Parse([]string{"-config", "x.yaml", "-debug", "-merge", "0.01", "cube.yaml"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if ConfigPath() != "x.yaml" {
		t.Errorf("ConfigPath() = %q, want %q", ConfigPath(), "x.yaml")
	}
	if !flagDebug || flagMerge != 0.01 {
		t.Errorf("flags not bound: debug=%v merge=%g", flagDebug, flagMerge)
	}
	if fs.Arg(0) != "cube.yaml" {
		t.Errorf("Arg(0) = %q, want cube.yaml", fs.Arg(0))
	}
}

func TestMeshOptions(t *testing.T) {
	cfg := Default()
	cfg.Tolerances.Planar = 1e-3
	cfg.Hull.Tolerance = 1e-7
	log := zap.NewNop()

	opts := cfg.MeshOptions(log)
	if opts.Tolerances != cfg.Tolerances {
		t.Errorf("expected tolerances %+v, got %+v", cfg.Tolerances, opts.Tolerances)
	}
	if opts.HullTolerance != 1e-7 {
		t.Errorf("expected hull tolerance 1e-7, got %g", opts.HullTolerance)
	}
	if opts.Logger != log {
		t.Error("expected logger to be passed through")
	}
	if opts.SkipMerge {
		t.Error("expected merging to stay enabled")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "meshtool.yaml")

	cfg := Default()
	cfg.Tolerances.MergeThreshold = 0.25
	cfg.Logging.Level = "warn"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("saved config = %+v, want %+v", loaded, cfg)
	}
}

func TestSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	if err := Default().Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ConfigDir(), "config.yaml")); err != nil {
		t.Errorf("saved config not found: %v", err)
	}
}
