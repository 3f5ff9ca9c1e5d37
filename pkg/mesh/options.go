package mesh

import "go.uber.org/zap"

// Default tolerances.
const (
	// MergeThreshold is the per-axis distance below which two vertices are
	// treated as the same vertex.
	MergeThreshold = 1e-7
	// ZeroArea is the area below which a triangle is degenerate.
	ZeroArea = 1e-6
	// Planar scales the convexity epsilon by the bounding box diagonal.
	Planar = 1e-5
)

// Tolerances groups the floating point thresholds used during construction
// and analysis.
type Tolerances struct {
	MergeThreshold float64 `yaml:"merge_threshold"`
	ZeroArea       float64 `yaml:"zero_area"`
	Planar         float64 `yaml:"planar"`
}

// DefaultTolerances returns the standard thresholds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		MergeThreshold: MergeThreshold,
		ZeroArea:       ZeroArea,
		Planar:         Planar,
	}
}

// Options control mesh construction.
type Options struct {
	// Tolerances override the defaults field by field; zero fields keep
	// the default value.
	Tolerances Tolerances

	// SkipMerge keeps the input vertex array as is instead of welding
	// near-identical vertices.
	SkipMerge bool

	// HullTolerance overrides the distance tolerance Quickhull derives from
	// the point coordinates when positive.
	HullTolerance float64

	// Logger receives debug output from analysis. Nil disables logging.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	def := DefaultTolerances()
	if o.Tolerances.MergeThreshold <= 0 {
		o.Tolerances.MergeThreshold = def.MergeThreshold
	}
	if o.Tolerances.ZeroArea <= 0 {
		o.Tolerances.ZeroArea = def.ZeroArea
	}
	if o.Tolerances.Planar <= 0 {
		o.Tolerances.Planar = def.Planar
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
