// Package quickhull computes the convex hull of a 3D point cloud.
//
// The builder keeps vertices, half edges and faces in index-addressed arenas.
// Every link (next, prev, opposite, owning face) is an arena index, with -1
// standing for "no link". Faces start as triangles and may grow into convex
// polygons when coplanar neighbours are merged.
package quickhull

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Hull construction errors. They describe input the algorithm cannot span a
// volume from, which is an expected outcome for pathological point sets.
var (
	ErrTooFewPoints = errors.New("quickhull: at least four points are required")
	ErrCoincident   = errors.New("quickhull: input points are coincident")
	ErrCollinear    = errors.New("quickhull: input points are collinear")
	ErrCoplanar     = errors.New("quickhull: input points are coplanar")
)

// doublePrec is the float64 machine epsilon.
const doublePrec = 2.2204460492503131e-16

const none = -1

// Options tune the hull builder.
type Options struct {
	// Tolerance overrides the distance tolerance derived from the input
	// coordinates when positive.
	Tolerance float64
}

type faceMark uint8

const (
	faceVisible faceMark = iota
	faceNonConvex
	faceDeleted
)

type mergeMode uint8

const (
	mergeNonConvexWrtLarger mergeMode = iota
	mergeNonConvex
)

type vertex struct {
	point r3.Vec
	index int

	// Outside-set links. face is the face whose outside set holds the vertex.
	prev, next int
	face       int
}

type halfEdge struct {
	vertex   int // head
	face     int
	prev     int
	next     int
	opposite int
}

type face struct {
	edge     int
	normal   r3.Vec
	centroid r3.Vec
	offset   float64
	area     float64
	numVerts int
	outside  int
	mark     faceMark
}

type horizonFrame struct {
	stop, cur int
	started   bool
}

type builder struct {
	vertices []vertex
	edges    []halfEdge
	faces    []face
	tol      float64

	// cursor is the lowest face index that may still own outside points.
	// Points only ever move to faces created after it.
	cursor int

	horizon   []int
	newFaces  []int
	unclaimed []int
	discarded []int
	frames    []horizonFrame
}

// Build computes the convex hull of points.
func Build(points []r3.Vec, opts Options) (*Hull, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}

	b := &builder{
		vertices: make([]vertex, len(points)),
		edges:    make([]halfEdge, 0, 6*len(points)),
		faces:    make([]face, 0, 2*len(points)),
	}
	for i, p := range points {
		b.vertices[i] = vertex{point: p, index: i, prev: none, next: none, face: none}
	}

	if err := b.initialSimplex(opts.Tolerance); err != nil {
		return nil, err
	}
	for {
		eye := b.nextEye()
		if eye == none {
			break
		}
		b.addPoint(eye)
	}
	return b.collect(), nil
}

func (b *builder) point(v int) r3.Vec {
	return b.vertices[v].point
}

func (b *builder) head(e int) int {
	return b.edges[e].vertex
}

func (b *builder) tail(e int) int {
	return b.edges[b.edges[e].prev].vertex
}

func (b *builder) oppositeFace(e int) int {
	return b.edges[b.edges[e].opposite].face
}

func (b *builder) setOpposite(e, o int) {
	b.edges[e].opposite = o
	b.edges[o].opposite = e
}

// distance is the signed distance from p to the plane of face f.
func (b *builder) distance(f int, p r3.Vec) float64 {
	return r3.Dot(b.faces[f].normal, p) - b.faces[f].offset
}

// faceEdge walks i edges forward (or -i backward) from the face's first edge.
func (b *builder) faceEdge(f, i int) int {
	e := b.faces[f].edge
	for ; i > 0; i-- {
		e = b.edges[e].next
	}
	for ; i < 0; i++ {
		e = b.edges[e].prev
	}
	return e
}

func (b *builder) newTriangle(v0, v1, v2 int) int {
	f := len(b.faces)
	e0 := len(b.edges)
	b.edges = append(b.edges,
		halfEdge{vertex: v0, face: f, prev: e0 + 2, next: e0 + 1, opposite: none},
		halfEdge{vertex: v1, face: f, prev: e0, next: e0 + 2, opposite: none},
		halfEdge{vertex: v2, face: f, prev: e0 + 1, next: e0, opposite: none},
	)
	b.faces = append(b.faces, face{edge: e0, outside: none, mark: faceVisible})
	b.computeNormalAndCentroid(f)
	return f
}

// computeNormalAndCentroid refreshes the plane of f from its current loop.
// The normal is the fan sum of cross products, so it stays valid for convex
// polygons as well as triangles.
func (b *builder) computeNormalAndCentroid(f int) {
	e0 := b.faces[f].edge
	e1 := b.edges[e0].next
	e2 := b.edges[e1].next

	p0 := b.point(b.head(e0))
	p1 := b.point(b.head(e1))
	d2 := r3.Sub(p1, p0)
	centroid := r3.Add(p0, p1)

	var normal r3.Vec
	n := 2
	for e2 != e0 {
		d1 := d2
		p2 := b.point(b.head(e2))
		d2 = r3.Sub(p2, p0)
		normal = r3.Add(normal, r3.Cross(d1, d2))
		centroid = r3.Add(centroid, p2)
		e2 = b.edges[e2].next
		n++
	}

	area := r3.Norm(normal)
	if area > 0 {
		normal = r3.Scale(1/area, normal)
	}
	centroid = r3.Scale(1/float64(n), centroid)

	fc := &b.faces[f]
	fc.normal = normal
	fc.area = area
	fc.centroid = centroid
	fc.offset = r3.Dot(normal, centroid)
	fc.numVerts = n
}

func (b *builder) addPointToFace(v, f int) {
	vx := &b.vertices[v]
	vx.face = f
	vx.prev = none
	vx.next = b.faces[f].outside
	if vx.next != none {
		b.vertices[vx.next].prev = v
	}
	b.faces[f].outside = v
}

func (b *builder) removePointFromFace(v, f int) {
	vx := &b.vertices[v]
	if vx.prev != none {
		b.vertices[vx.prev].next = vx.next
	} else {
		b.faces[f].outside = vx.next
	}
	if vx.next != none {
		b.vertices[vx.next].prev = vx.prev
	}
	vx.prev, vx.next, vx.face = none, none, none
}

// deleteFacePoints empties the outside set of f. Points still above the
// absorbing face move there; everything else becomes unclaimed.
func (b *builder) deleteFacePoints(f, absorbing int) {
	v := b.faces[f].outside
	b.faces[f].outside = none
	for v != none {
		next := b.vertices[v].next
		b.vertices[v].prev, b.vertices[v].next, b.vertices[v].face = none, none, none
		if absorbing != none && b.distance(absorbing, b.point(v)) > b.tol {
			b.addPointToFace(v, absorbing)
		} else {
			b.unclaimed = append(b.unclaimed, v)
		}
		v = next
	}
}

func (b *builder) initialSimplex(explicitTol float64) error {
	var maxV, minV [3]int
	for i := 1; i < len(b.vertices); i++ {
		p := b.point(i)
		for axis := 0; axis < 3; axis++ {
			if component(p, axis) > component(b.point(maxV[axis]), axis) {
				maxV[axis] = i
			}
			if component(p, axis) < component(b.point(minV[axis]), axis) {
				minV[axis] = i
			}
		}
	}

	if explicitTol > 0 {
		b.tol = explicitTol
	} else {
		var sum float64
		for axis := 0; axis < 3; axis++ {
			sum += math.Max(
				math.Abs(component(b.point(maxV[axis]), axis)),
				math.Abs(component(b.point(minV[axis]), axis)),
			)
		}
		b.tol = 3 * doublePrec * sum
	}

	imax, extent := 0, 0.0
	for axis := 0; axis < 3; axis++ {
		diff := component(b.point(maxV[axis]), axis) - component(b.point(minV[axis]), axis)
		if diff > extent {
			imax, extent = axis, diff
		}
	}
	if extent <= b.tol {
		return ErrCoincident
	}

	v := [4]int{maxV[imax], minV[imax], none, none}
	p0 := b.point(v[0])
	u01 := r3.Unit(r3.Sub(b.point(v[1]), p0))

	// Third vertex: farthest from the line v0-v1.
	var normal r3.Vec
	maxSqr := 0.0
	for i := range b.vertices {
		if i == v[0] || i == v[1] {
			continue
		}
		x := r3.Cross(u01, r3.Sub(b.point(i), p0))
		if l := r3.Norm2(x); l > maxSqr {
			maxSqr, v[2], normal = l, i, x
		}
	}
	if math.Sqrt(maxSqr) <= 100*b.tol {
		return ErrCollinear
	}
	normal = r3.Unit(normal)
	normal = r3.Unit(r3.Sub(normal, r3.Scale(r3.Dot(normal, u01), u01)))

	// Fourth vertex: farthest from the plane through the first three.
	maxDist := 0.0
	d0 := r3.Dot(b.point(v[2]), normal)
	for i := range b.vertices {
		if i == v[0] || i == v[1] || i == v[2] {
			continue
		}
		if dist := math.Abs(r3.Dot(b.point(i), normal) - d0); dist > maxDist {
			maxDist, v[3] = dist, i
		}
	}
	if maxDist <= 100*b.tol {
		return ErrCoplanar
	}

	var tris [4]int
	if r3.Dot(b.point(v[3]), normal)-d0 < 0 {
		tris[0] = b.newTriangle(v[0], v[1], v[2])
		tris[1] = b.newTriangle(v[3], v[1], v[0])
		tris[2] = b.newTriangle(v[3], v[2], v[1])
		tris[3] = b.newTriangle(v[3], v[0], v[2])
		for i := 0; i < 3; i++ {
			k := (i + 1) % 3
			b.setOpposite(b.faceEdge(tris[i+1], 1), b.faceEdge(tris[k+1], 0))
			b.setOpposite(b.faceEdge(tris[i+1], 2), b.faceEdge(tris[0], k))
		}
	} else {
		tris[0] = b.newTriangle(v[0], v[2], v[1])
		tris[1] = b.newTriangle(v[3], v[0], v[1])
		tris[2] = b.newTriangle(v[3], v[1], v[2])
		tris[3] = b.newTriangle(v[3], v[2], v[0])
		for i := 0; i < 3; i++ {
			k := (i + 1) % 3
			b.setOpposite(b.faceEdge(tris[i+1], 0), b.faceEdge(tris[k+1], 1))
			b.setOpposite(b.faceEdge(tris[i+1], 2), b.faceEdge(tris[0], (3-i)%3))
		}
	}

	for i := range b.vertices {
		if i == v[0] || i == v[1] || i == v[2] || i == v[3] {
			continue
		}
		best, bestDist := none, b.tol
		for _, f := range tris {
			if d := b.distance(f, b.point(i)); d > bestDist {
				best, bestDist = f, d
			}
		}
		if best != none {
			b.addPointToFace(i, best)
		}
	}
	return nil
}

// nextEye returns the farthest outside point of the first face that still has
// one, or none when the hull is complete.
func (b *builder) nextEye() int {
	for ; b.cursor < len(b.faces); b.cursor++ {
		f := b.faces[b.cursor]
		if f.mark == faceDeleted || f.outside == none {
			continue
		}
		best, bestDist := none, 0.0
		for v := f.outside; v != none; v = b.vertices[v].next {
			if d := b.distance(b.cursor, b.point(v)); best == none || d > bestDist {
				best, bestDist = v, d
			}
		}
		return best
	}
	return none
}

func (b *builder) addPoint(eye int) {
	b.horizon = b.horizon[:0]
	b.unclaimed = b.unclaimed[:0]
	b.newFaces = b.newFaces[:0]

	eyeFace := b.vertices[eye].face
	b.removePointFromFace(eye, eyeFace)
	b.computeHorizon(b.point(eye), eyeFace)
	b.addNewFaces(eye)

	// First pass merges faces that are non-convex with respect to the larger
	// of the two; the second resolves whatever was left marked non-convex.
	for _, f := range b.newFaces {
		if b.faces[f].mark == faceVisible {
			for b.adjacentMerge(f, mergeNonConvexWrtLarger) {
			}
		}
	}
	for _, f := range b.newFaces {
		if b.faces[f].mark == faceNonConvex {
			b.faces[f].mark = faceVisible
			for b.adjacentMerge(f, mergeNonConvex) {
			}
		}
	}

	b.resolveUnclaimed()
}

// computeHorizon deletes every face visible from eye, starting at start, and
// collects the boundary half edges of the visible region in loop order. The
// walk is a depth-first search with an explicit stack.
func (b *builder) computeHorizon(eye r3.Vec, start int) {
	b.deleteFacePoints(start, none)
	b.faces[start].mark = faceDeleted

	e0 := b.faces[start].edge
	stack := append(b.frames[:0], horizonFrame{stop: e0, cur: e0})
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.started && top.cur == top.stop {
			stack = stack[:len(stack)-1]
			continue
		}
		top.started = true
		e := top.cur
		top.cur = b.edges[e].next

		opp := b.edges[e].opposite
		oppFace := b.edges[opp].face
		if b.faces[oppFace].mark != faceVisible {
			continue
		}
		if b.distance(oppFace, eye) > b.tol {
			b.deleteFacePoints(oppFace, none)
			b.faces[oppFace].mark = faceDeleted
			stack = append(stack, horizonFrame{stop: opp, cur: b.edges[opp].next, started: true})
		} else {
			b.horizon = append(b.horizon, e)
		}
	}
	b.frames = stack
}

// addNewFaces builds the cone of triangles joining eye to each horizon edge.
func (b *builder) addNewFaces(eye int) {
	prevSide, firstSide := none, none
	for _, h := range b.horizon {
		f := b.newTriangle(eye, b.tail(h), b.head(h))
		b.setOpposite(b.faceEdge(f, -1), b.edges[h].opposite)
		side := b.faceEdge(f, 0)
		if prevSide != none {
			b.setOpposite(b.edges[side].next, prevSide)
		} else {
			firstSide = side
		}
		b.newFaces = append(b.newFaces, f)
		prevSide = side
	}
	b.setOpposite(b.edges[firstSide].next, prevSide)
}

// oppFaceDistance is the distance of the centroid of the face across e from
// the plane of e's own face.
func (b *builder) oppFaceDistance(e int) float64 {
	return b.distance(b.edges[e].face, b.faces[b.oppositeFace(e)].centroid)
}

func (b *builder) adjacentMerge(f int, mode mergeMode) bool {
	e := b.faces[f].edge
	convex := true
	for {
		oppFace := b.oppositeFace(e)
		opp := b.edges[e].opposite
		merge := false

		if mode == mergeNonConvex {
			if b.oppFaceDistance(e) > -b.tol || b.oppFaceDistance(opp) > -b.tol {
				merge = true
			}
		} else if b.faces[f].area > b.faces[oppFace].area {
			if b.oppFaceDistance(e) > -b.tol {
				merge = true
			} else if b.oppFaceDistance(opp) > -b.tol {
				convex = false
			}
		} else {
			if b.oppFaceDistance(opp) > -b.tol {
				merge = true
			} else if b.oppFaceDistance(e) > -b.tol {
				convex = false
			}
		}

		if merge {
			for _, d := range b.mergeAdjacentFace(f, e) {
				b.deleteFacePoints(d, f)
			}
			return true
		}

		e = b.edges[e].next
		if e == b.faces[f].edge {
			break
		}
	}
	if !convex {
		b.faces[f].mark = faceNonConvex
	}
	return false
}

// mergeAdjacentFace absorbs the face across adj into f and returns the faces
// that were discarded in the process.
func (b *builder) mergeAdjacentFace(f, adj int) []int {
	oppFace := b.oppositeFace(adj)
	b.discarded = append(b.discarded[:0], oppFace)
	b.faces[oppFace].mark = faceDeleted

	opp := b.edges[adj].opposite
	adjPrev := b.edges[adj].prev
	adjNext := b.edges[adj].next
	oppPrev := b.edges[opp].prev
	oppNext := b.edges[opp].next

	for b.oppositeFace(adjPrev) == oppFace {
		adjPrev = b.edges[adjPrev].prev
		oppNext = b.edges[oppNext].next
	}
	for b.oppositeFace(adjNext) == oppFace {
		oppPrev = b.edges[oppPrev].prev
		adjNext = b.edges[adjNext].next
	}

	end := b.edges[oppPrev].next
	for e := oppNext; e != end; e = b.edges[e].next {
		b.edges[e].face = f
	}
	if adj == b.faces[f].edge {
		b.faces[f].edge = adjNext
	}

	if d := b.connectHalfEdges(f, oppPrev, adjNext); d != none {
		b.discarded = append(b.discarded, d)
	}
	if d := b.connectHalfEdges(f, adjPrev, oppNext); d != none {
		b.discarded = append(b.discarded, d)
	}

	b.computeNormalAndCentroid(f)
	return b.discarded
}

// connectHalfEdges links prev to e inside f. When both border the same face a
// redundant edge is removed; a triangle on the other side is discarded.
func (b *builder) connectHalfEdges(f, prev, e int) int {
	if b.oppositeFace(prev) != b.oppositeFace(e) {
		b.edges[prev].next = e
		b.edges[e].prev = prev
		return none
	}

	discarded := none
	oppFace := b.oppositeFace(e)
	if prev == b.faces[f].edge {
		b.faces[f].edge = e
	}

	var oppEdge int
	if b.faces[oppFace].numVerts == 3 {
		oppEdge = b.edges[b.edges[b.edges[e].opposite].prev].opposite
		b.faces[oppFace].mark = faceDeleted
		discarded = oppFace
	} else {
		oppEdge = b.edges[b.edges[e].opposite].next
		if b.faces[oppFace].edge == b.edges[oppEdge].prev {
			b.faces[oppFace].edge = oppEdge
		}
		b.edges[oppEdge].prev = b.edges[b.edges[oppEdge].prev].prev
		b.edges[b.edges[oppEdge].prev].next = oppEdge
	}

	b.edges[e].prev = b.edges[prev].prev
	b.edges[b.edges[e].prev].next = e
	b.setOpposite(e, oppEdge)

	b.computeNormalAndCentroid(oppFace)
	return discarded
}

func (b *builder) resolveUnclaimed() {
	for _, v := range b.unclaimed {
		p := b.point(v)
		best, bestDist := none, b.tol
		for _, f := range b.newFaces {
			if b.faces[f].mark != faceVisible {
				continue
			}
			if d := b.distance(f, p); d > bestDist {
				best, bestDist = f, d
			}
			if bestDist > 1000*b.tol {
				break
			}
		}
		if best != none {
			b.addPointToFace(v, best)
		}
	}
	b.unclaimed = b.unclaimed[:0]
}

func (b *builder) collect() *Hull {
	h := &Hull{tolerance: b.tol}
	remap := make([]int, len(b.vertices))
	for i := range remap {
		remap[i] = none
	}

	for f := range b.faces {
		if b.faces[f].mark == faceDeleted {
			continue
		}
		poly := make([]int, 0, b.faces[f].numVerts)
		e0 := b.faces[f].edge
		for e := e0; ; {
			v := b.head(e)
			if remap[v] == none {
				remap[v] = len(h.points)
				h.points = append(h.points, b.point(v))
				h.source = append(h.source, b.vertices[v].index)
			}
			poly = append(poly, remap[v])
			if e = b.edges[e].next; e == e0 {
				break
			}
		}
		h.faces = append(h.faces, poly)
	}
	return h
}

func component(p r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}
