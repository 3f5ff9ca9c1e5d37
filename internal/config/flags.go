package config

import "flag"

var (
	flagConfig   string
	flagDebug    bool
	flagMerge    float64
	flagPlanar   float64
	flagZeroArea float64
	flagHullTol  float64
	flagLogFile  string
)

// RegisterFlags adds the shared configuration flags to a command's flag set.
func RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&flagConfig, "config", "", "Path to config file")
	fs.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	fs.Float64Var(&flagMerge, "merge", 0, "Vertex merge threshold per axis")
	fs.Float64Var(&flagPlanar, "planar", 0, "Convexity epsilon factor (scaled by the bounding diagonal)")
	fs.Float64Var(&flagZeroArea, "zero-area", 0, "Area below which a face is degenerate")
	fs.Float64Var(&flagHullTol, "hull-tolerance", 0, "Quickhull plane distance tolerance")
	fs.StringVar(&flagLogFile, "log-file", "", "Write logs to this file as well")
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flagMerge > 0 {
		cfg.Tolerances.MergeThreshold = flagMerge
	}
	if flagPlanar > 0 {
		cfg.Tolerances.Planar = flagPlanar
	}
	if flagZeroArea > 0 {
		cfg.Tolerances.ZeroArea = flagZeroArea
	}
	if flagHullTol > 0 {
		cfg.Hull.Tolerance = flagHullTol
	}
	if flagLogFile != "" {
		cfg.Logging.LogFile = flagLogFile
	}
}
