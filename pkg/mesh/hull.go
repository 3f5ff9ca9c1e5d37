package mesh

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/simplemesh/pkg/math"
	"github.com/Faultbox/simplemesh/pkg/quickhull"
)

// Quickhull builds the convex hull of points as an analyzed mesh.
//
// ok is false when the points do not span a volume or when the triangulated
// hull fails its own checks; the returned mesh is nil in that case. A hull is
// only accepted if it is watertight, convex, a single body, not degenerate and
// needed no repairs.
//
// The cloud is welded with the same quadratic scan as mesh construction before
// the hull runs, so very large scans should be thinned first.
func Quickhull(points []math.Vec3, opts Options) (*Mesh, bool) {
	opts = opts.withDefaults()
	hull, err := buildHull(points, opts)
	if err != nil {
		opts.Logger.Debug("quickhull failed", zap.Int("points", len(points)), zap.Error(err))
		return nil, false
	}
	return hull, true
}

func buildHull(points []math.Vec3, opts Options) (*Mesh, error) {
	unique, _ := mergeVertices(points, opts.Tolerances.MergeThreshold)
	cloud := make([]r3.Vec, len(unique))
	for i, p := range unique {
		cloud[i] = p.R3()
	}

	h, err := quickhull.Build(cloud, quickhull.Options{Tolerance: opts.HullTolerance})
	if err != nil {
		return nil, err
	}

	vertices := make([]math.Vec3, len(h.Vertices()))
	for i, p := range h.Vertices() {
		vertices[i] = math.FromR3(p)
	}
	opts.SkipMerge = false
	m, err := FromArrays(vertices, h.Triangles(), opts)
	if err != nil {
		return nil, err
	}

	res := m.Result()
	opts.Logger.Debug("hull built",
		zap.Int("points", len(points)),
		zap.Int("hull_vertices", m.VertexCount()),
		zap.Int("hull_faces", m.FaceCount()),
		zap.Int("polygons", len(h.Faces())),
		zap.Float64("tolerance", h.Tolerance()),
		zap.Stringer("result", res))
	if !res.IsWatertight || !res.IsConvex || res.Multibody || res.DegenerateMesh || res.Repairs != RepairsNone {
		return nil, ErrHullVerification
	}
	return m, nil
}

// MakeConvex replaces the geometry with its convex hull and analyzes the
// result. On failure the mesh is left unchanged. Slices previously returned
// by Vertices or Indices keep the old geometry.
func (m *Mesh) MakeConvex() bool {
	hull, err := buildHull(m.vertices, Options{
		Tolerances:    m.tol,
		HullTolerance: m.hullTol,
		Logger:        m.log,
	})
	if err != nil {
		m.log.Debug("make convex failed", zap.Error(err))
		return false
	}

	m.vertices = hull.vertices
	m.indices = hull.indices
	m.analyzed = false
	m.Calculate()
	return true
}
