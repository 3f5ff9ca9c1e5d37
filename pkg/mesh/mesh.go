// Package mesh analyzes and repairs indexed triangle meshes.
//
// A Mesh is built once from vertex and index data, welding vertices that lie
// within MergeThreshold of each other. Construction runs the topology
// analysis, which reports watertightness, winding consistency, connectivity,
// degeneracy and convexity, fixing winding in place when it can.
package mesh

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/simplemesh/pkg/math"
)

// Construction and access errors.
var (
	ErrNotTriangles = errors.New("mesh: geometry is not a triangle list")
	ErrNoIndices    = errors.New("mesh: index list is empty")
	ErrIndexCount   = errors.New("mesh: index count is not a multiple of 3")
	ErrIndexRange   = errors.New("mesh: vertex index out of range")
	ErrFaceRange    = errors.New("mesh: face index out of range")

	// ErrHullVerification is reported when a computed hull does not pass
	// its own topology checks.
	ErrHullVerification = errors.New("mesh: hull failed verification")
)

// PrimitiveKind is the primitive topology of a Geometry.
type PrimitiveKind int

const (
	Triangles PrimitiveKind = iota
	TriangleStrip
	Lines
	Points
)

// String returns a human-readable primitive name.
func (k PrimitiveKind) String() string {
	switch k {
	case Triangles:
		return "Triangles"
	case TriangleStrip:
		return "TriangleStrip"
	case Lines:
		return "Lines"
	case Points:
		return "Points"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Geometry is indexed vertex data as handed over by loaders.
type Geometry struct {
	Kind      PrimitiveKind
	Positions []math.Vec3
	Indices   []uint32
}

// Mesh is an analyzed triangle mesh.
//
// A Mesh is not safe for concurrent use while MakeConvex runs. Slices returned
// by accessors are copies and do not follow later mutations.
type Mesh struct {
	vertices []math.Vec3
	indices  []uint32

	tol     Tolerances
	hullTol float64
	log     *zap.Logger

	result   AnalysisResult
	analyzed bool
}

// FromGeometry builds a mesh from triangle-list geometry.
func FromGeometry(g Geometry, opts Options) (*Mesh, error) {
	if g.Kind != Triangles {
		return nil, fmt.Errorf("%w: got %s", ErrNotTriangles, g.Kind)
	}
	return FromArrays(g.Positions, g.Indices, opts)
}

// FromArrays builds a mesh from raw vertex and index arrays and analyzes it.
// The inputs are copied.
func FromArrays(vertices []math.Vec3, indices []uint32, opts Options) (*Mesh, error) {
	if err := validateIndices(len(vertices), indices); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	m := &Mesh{
		tol:     opts.Tolerances,
		hullTol: opts.HullTolerance,
		log:     opts.Logger,
	}
	if opts.SkipMerge {
		m.vertices = slices.Clone(vertices)
		m.indices = slices.Clone(indices)
	} else {
		var remap []uint32
		m.vertices, remap = mergeVertices(vertices, opts.Tolerances.MergeThreshold)
		m.indices = make([]uint32, len(indices))
		for i, idx := range indices {
			m.indices[i] = remap[idx]
		}
	}

	m.log.Debug("mesh built",
		zap.Int("input_vertices", len(vertices)),
		zap.Int("vertices", len(m.vertices)),
		zap.Int("faces", m.FaceCount()))

	m.Calculate()
	return m, nil
}

func validateIndices(vertexCount int, indices []uint32) error {
	if len(indices) == 0 {
		return ErrNoIndices
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrIndexCount, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: index %d at position %d, %d vertices", ErrIndexRange, idx, i, vertexCount)
		}
	}
	return nil
}

// mergeVertices welds vertices closer than threshold on every axis onto the
// nearest previously accepted vertex. It returns the accepted vertices and the
// old-to-new index map. The scan is quadratic, which is fine for hull-sized
// inputs but slow for large scans.
func mergeVertices(vertices []math.Vec3, threshold float64) ([]math.Vec3, []uint32) {
	accepted := make([]math.Vec3, 0, len(vertices))
	remap := make([]uint32, len(vertices))

	for i, v := range vertices {
		best := -1
		bestDist := 0.0
		for j, a := range accepted {
			if !v.NearlyEqual(a, threshold) {
				continue
			}
			d := r3.Norm2(r3.Sub(v.R3(), a.R3()))
			if best < 0 || d < bestDist {
				best, bestDist = j, d
			}
		}
		if best >= 0 {
			remap[i] = uint32(best)
			continue
		}
		remap[i] = uint32(len(accepted))
		accepted = append(accepted, v)
	}
	return accepted, remap
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// Face returns the vertex indices of face i in winding order.
func (m *Mesh) Face(i int) ([3]uint32, error) {
	if i < 0 || i >= m.FaceCount() {
		return [3]uint32{}, fmt.Errorf("%w: %d of %d", ErrFaceRange, i, m.FaceCount())
	}
	return m.face(i), nil
}

// FaceNormal returns the outward unit normal of face i.
func (m *Mesh) FaceNormal(i int) (math.Vec3, error) {
	if i < 0 || i >= m.FaceCount() {
		return math.Vec3{}, fmt.Errorf("%w: %d of %d", ErrFaceRange, i, m.FaceCount())
	}
	return math.FromR3(m.faceNormal(i)), nil
}

// FaceCenter returns the centroid of face i.
func (m *Mesh) FaceCenter(i int) (math.Vec3, error) {
	if i < 0 || i >= m.FaceCount() {
		return math.Vec3{}, fmt.Errorf("%w: %d of %d", ErrFaceRange, i, m.FaceCount())
	}
	a, b, c := m.corners(i)
	return math.FromR3(r3.Scale(1.0/3, r3.Add(r3.Add(a, b), c))), nil
}

// Vertices returns a copy of the vertex array.
func (m *Mesh) Vertices() []math.Vec3 {
	return slices.Clone(m.vertices)
}

// Indices returns a copy of the flat triangle index array.
func (m *Mesh) Indices() []uint32 {
	return slices.Clone(m.indices)
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() math.Bounds {
	return math.BoundsOf(m.vertices)
}

// Tolerances returns the thresholds the mesh was built with.
func (m *Mesh) Tolerances() Tolerances {
	return m.tol
}

func (m *Mesh) face(i int) [3]uint32 {
	return [3]uint32{m.indices[3*i], m.indices[3*i+1], m.indices[3*i+2]}
}

func (m *Mesh) corners(i int) (a, b, c r3.Vec) {
	f := m.face(i)
	return m.vertices[f[0]].R3(), m.vertices[f[1]].R3(), m.vertices[f[2]].R3()
}

// faceNormal is normalize(cross(C-B, A-B)); zero for collapsed faces.
func (m *Mesh) faceNormal(i int) r3.Vec {
	a, b, c := m.corners(i)
	n := r3.Cross(r3.Sub(c, b), r3.Sub(a, b))
	if l := r3.Norm(n); l > 0 {
		return r3.Scale(1/l, n)
	}
	return r3.Vec{}
}

func (m *Mesh) faceArea(i int) float64 {
	a, b, c := m.corners(i)
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// flipFace reverses the winding of face i: (A,B,C) becomes (C,B,A).
func (m *Mesh) flipFace(i int) {
	m.indices[3*i], m.indices[3*i+2] = m.indices[3*i+2], m.indices[3*i]
}

func (m *Mesh) flipAll() {
	for i := 0; i < m.FaceCount(); i++ {
		m.flipFace(i)
	}
}

// signedVolume treats the faces as a closed polyhedron referenced from the
// origin. It is positive when normals point outward.
func (m *Mesh) signedVolume() float64 {
	var vol float64
	for i := 0; i < m.FaceCount(); i++ {
		a, b, c := m.corners(i)
		vol += r3.Dot(a, r3.Cross(b, c))
	}
	return vol / 6
}
