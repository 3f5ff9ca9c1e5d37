package mesh

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/simplemesh/pkg/graph"
)

// Repairs records the fixes applied during analysis.
type Repairs uint8

const (
	// FixedWinding means some faces were reversed to agree with their
	// neighbours.
	FixedWinding Repairs = 1 << iota
	// FlippedNormals means every face was reversed so normals point outward.
	FlippedNormals

	// RepairsNone means the faces were left untouched.
	RepairsNone Repairs = 0
)

// Has reports whether all bits of r2 are set in r.
func (r Repairs) Has(r2 Repairs) bool {
	return r&r2 == r2
}

func (r Repairs) String() string {
	if r == RepairsNone {
		return "None"
	}
	var parts []string
	if r.Has(FixedWinding) {
		parts = append(parts, "FixedWinding")
	}
	if r.Has(FlippedNormals) {
		parts = append(parts, "FlippedNormals")
	}
	if rest := r &^ (FixedWinding | FlippedNormals); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

// Stats are counters gathered during analysis. They never affect the flags.
type Stats struct {
	Vertices         int
	Faces            int
	BoundaryEdges    int
	NonManifoldEdges int
	DegenerateFaces  int
	// Components is 0 when analysis stopped before the connectivity check.
	Components   int
	SignedVolume float64
}

// AnalysisResult holds the outcome of Calculate.
type AnalysisResult struct {
	IsWatertight   bool
	IsConvex       bool
	Multibody      bool
	DegenerateMesh bool
	Repairs        Repairs
	Stats          Stats
}

func (r AnalysisResult) String() string {
	return fmt.Sprintf("watertight=%t convex=%t multibody=%t degenerate=%t repairs=%s",
		r.IsWatertight, r.IsConvex, r.Multibody, r.DegenerateMesh, r.Repairs)
}

// stage is a step of the analysis state machine.
type stage int

const (
	stageUnanalyzed stage = iota
	stageWatertight
	stageWinding
	stageRepair
	stageDegeneracy
	stageConnectivity
	stageConvexity
	stageDone
)

var stageNames = [...]string{
	stageUnanalyzed:   "unanalyzed",
	stageWatertight:   "watertight",
	stageWinding:      "winding",
	stageRepair:       "repair",
	stageDegeneracy:   "degeneracy",
	stageConnectivity: "connectivity",
	stageConvexity:    "convexity",
	stageDone:         "done",
}

func (s stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// facePair is a pair of distinct faces sharing at least one edge. edge is the
// first shared edge seen; shared counts them.
type facePair struct {
	a, b   int
	edge   CanonicalEdge
	shared int
}

// analyzer runs one pass of the state machine over a mesh. Edge data is
// derived from the current index buffer and rebuilt after every repair.
type analyzer struct {
	m   *Mesh
	log *zap.Logger

	edges []DirectedEdge
	canon []CanonicalEdge
	pairs [][2]int

	facePairs []facePair
	adjacency *graph.Adjacency
	nonzero   []bool

	repaired bool
	res      AnalysisResult
}

// Calculate analyzes the mesh and returns the result. The result is cached
// until the geometry changes, so repeated calls are free and never touch the
// index buffer again.
func (m *Mesh) Calculate() AnalysisResult {
	if m.analyzed {
		return m.result
	}
	a := &analyzer{m: m, log: m.log}
	m.result = a.run()
	m.analyzed = true
	return m.result
}

// Result returns the cached analysis result.
func (m *Mesh) Result() AnalysisResult { return m.Calculate() }

func (m *Mesh) IsWatertight() bool   { return m.Calculate().IsWatertight }
func (m *Mesh) IsConvex() bool       { return m.Calculate().IsConvex }
func (m *Mesh) Multibody() bool      { return m.Calculate().Multibody }
func (m *Mesh) DegenerateMesh() bool { return m.Calculate().DegenerateMesh }
func (m *Mesh) Repairs() Repairs     { return m.Calculate().Repairs }

// BoundaryEdges returns the edges used by a single face, in first-seen order.
// A watertight mesh has none.
func (m *Mesh) BoundaryEdges() []CanonicalEdge {
	return m.edgesUsed(func(n int) bool { return n == 1 })
}

// NonManifoldEdges returns the edges used by more than two faces.
func (m *Mesh) NonManifoldEdges() []CanonicalEdge {
	return m.edgesUsed(func(n int) bool { return n > 2 })
}

func (m *Mesh) edgesUsed(match func(int) bool) []CanonicalEdge {
	keys, uses := edgeUses(CanonicalEdges(DirectedEdges(m.indices)))
	var out []CanonicalEdge
	for _, k := range keys {
		if match(uses[k]) {
			out = append(out, k)
		}
	}
	return out
}

func (a *analyzer) run() AnalysisResult {
	a.res.Stats.Vertices = a.m.VertexCount()
	a.res.Stats.Faces = a.m.FaceCount()

	for st := stageWatertight; st != stageDone; {
		next := a.step(st)
		a.log.Debug("analysis step",
			zap.Stringer("stage", st),
			zap.Stringer("next", next))
		st = next
	}

	a.res.Stats.SignedVolume = a.m.signedVolume()
	a.log.Debug("analysis done", zap.Stringer("result", a.res))
	return a.res
}

func (a *analyzer) step(st stage) stage {
	switch st {
	case stageWatertight:
		return a.checkWatertight()
	case stageWinding:
		return a.checkWinding()
	case stageRepair:
		return a.repair()
	case stageDegeneracy:
		return a.checkDegeneracy()
	case stageConnectivity:
		return a.checkConnectivity()
	case stageConvexity:
		return a.checkConvexity()
	default:
		return stageDone
	}
}

// index rebuilds the edge arrays and shared-edge pairs from the faces.
func (a *analyzer) index() {
	a.edges = DirectedEdges(a.m.indices)
	a.canon = CanonicalEdges(a.edges)
	a.pairs = DuplicatePairIndices(a.canon)
	a.facePairs = nil
	a.adjacency = nil
}

func (a *analyzer) checkWatertight() stage {
	a.index()

	keys, uses := edgeUses(a.canon)
	a.res.Stats.BoundaryEdges, a.res.Stats.NonManifoldEdges = 0, 0
	for _, k := range keys {
		switch n := uses[k]; {
		case n == 1:
			a.res.Stats.BoundaryEdges++
		case n > 2:
			a.res.Stats.NonManifoldEdges++
		}
	}

	a.res.IsWatertight = 2*len(a.pairs) == len(a.edges)
	a.log.Debug("watertight check",
		zap.Int("edges", len(a.edges)),
		zap.Int("pairs", len(a.pairs)),
		zap.Int("boundary_edges", a.res.Stats.BoundaryEdges),
		zap.Int("non_manifold_edges", a.res.Stats.NonManifoldEdges))
	if !a.res.IsWatertight {
		a.res.IsConvex = false
		return stageDone
	}
	return stageWinding
}

func (a *analyzer) windingConsistent() bool {
	for _, p := range a.pairs {
		if !a.edges[p[0]].Reverses(a.edges[p[1]]) {
			return false
		}
	}
	return true
}

func (a *analyzer) checkWinding() stage {
	if a.windingConsistent() {
		if !a.repaired && a.orientOutward() {
			a.index()
		}
		return stageDegeneracy
	}
	if a.repaired {
		// A repaired mesh that is still inconsistent cannot be oriented.
		a.log.Debug("winding still inconsistent after repair")
		return a.fail()
	}
	return stageRepair
}

func (a *analyzer) repair() stage {
	a.repaired = true
	fixes, ok := a.repairWinding()
	a.res.Repairs |= fixes
	if !ok {
		return a.fail()
	}
	// Orientation changed; nothing derived from the old faces is valid.
	return stageWatertight
}

func (a *analyzer) fail() stage {
	a.res.Multibody = true
	a.res.IsConvex = false
	return stageDone
}

func (a *analyzer) checkDegeneracy() stage {
	n := a.m.FaceCount()
	a.nonzero = make([]bool, n)
	degenerate := 0
	for i := 0; i < n; i++ {
		if a.m.faceArea(i) >= a.m.tol.ZeroArea {
			a.nonzero[i] = true
		} else {
			degenerate++
		}
	}
	a.res.Stats.DegenerateFaces = degenerate
	a.log.Debug("degeneracy check", zap.Int("degenerate_faces", degenerate))

	if degenerate == n {
		a.res.DegenerateMesh = true
		a.res.IsConvex = false
		return stageDone
	}
	return stageConnectivity
}

func (a *analyzer) checkConnectivity() stage {
	g := a.faceAdjacency()
	components := g.ConnectedComponents()
	a.res.Stats.Components = len(components)
	a.log.Debug("connectivity check",
		zap.Int("adjacencies", g.EdgeCount()),
		zap.Int("components", len(components)))

	if len(components) > 1 {
		a.res.Multibody = true
		a.res.IsConvex = false
		return stageDone
	}
	return stageConvexity
}

// faceAdjacency links faces that share exactly one edge. Every face is a node,
// added in face order, so node 0 is the first enumerated node.
func (a *analyzer) faceAdjacency() *graph.Adjacency {
	if a.adjacency != nil {
		return a.adjacency
	}

	lookup := make(map[[2]int]int, len(a.pairs))
	for _, p := range a.pairs {
		fa, fb := a.edges[p[0]].Face, a.edges[p[1]].Face
		if fa == fb {
			continue
		}
		key := [2]int{min(fa, fb), max(fa, fb)}
		if k, ok := lookup[key]; ok {
			a.facePairs[k].shared++
			continue
		}
		lookup[key] = len(a.facePairs)
		a.facePairs = append(a.facePairs, facePair{a: fa, b: fb, edge: a.canon[p[0]], shared: 1})
	}

	n := a.m.FaceCount()
	g := graph.New(n)
	for f := 0; f < n; f++ {
		g.AddNode(f)
	}
	for _, fp := range a.facePairs {
		if fp.shared == 1 {
			g.AddEdge(fp.a, fp.b)
		}
	}
	a.adjacency = g
	return g
}

func (a *analyzer) checkConvexity() stage {
	valid := a.validPairs()
	if len(valid) == 0 {
		a.res.DegenerateMesh = true
		a.res.IsConvex = false
		return stageDone
	}
	a.res.IsConvex = a.convex(valid)
	return stageDone
}

// validPairs returns the adjacent face pairs where both faces have area.
func (a *analyzer) validPairs() []facePair {
	a.faceAdjacency()
	var valid []facePair
	for _, fp := range a.facePairs {
		if fp.shared == 1 && a.nonzero[fp.a] && a.nonzero[fp.b] {
			valid = append(valid, fp)
		}
	}
	return valid
}
