package mesh

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// convex tests every valid face pair for a fold. For a pair (A, B) the vertex
// of B off the shared edge must not lie above the plane of A by more than a
// tolerance scaled to the mesh size.
func (a *analyzer) convex(pairs []facePair) bool {
	eps := a.m.tol.Planar * max(a.m.Bounds().Diagonal(), 1)

	for _, fp := range pairs {
		fa, fb := a.m.face(fp.a), a.m.face(fp.b)
		_, okA := unsharedVertex(fa, fp.edge)
		vb, okB := unsharedVertex(fb, fp.edge)
		if !okA || !okB {
			a.log.Warn("face pair without a single opposite vertex",
				zap.Int("face_a", fp.a),
				zap.Int("face_b", fp.b),
				zap.Uint32("edge_lo", fp.edge.Lo),
				zap.Uint32("edge_hi", fp.edge.Hi))
			return false
		}

		normal := a.m.faceNormal(fp.a)
		origin := a.m.vertices[fp.edge.Lo].R3()
		d := r3.Dot(normal, r3.Sub(a.m.vertices[vb].R3(), origin))
		if d > eps {
			a.log.Debug("fold found",
				zap.Int("face_a", fp.a),
				zap.Int("face_b", fp.b),
				zap.Float64("distance", d),
				zap.Float64("epsilon", eps))
			return false
		}
	}
	return true
}

// unsharedVertex returns the vertex of face that is not on edge. ok is false
// unless exactly one such vertex exists.
func unsharedVertex(face [3]uint32, edge CanonicalEdge) (v uint32, ok bool) {
	n := 0
	for _, idx := range face {
		if idx != edge.Lo && idx != edge.Hi {
			v = idx
			n++
		}
	}
	return v, n == 1
}
