package mesh

import "go.uber.org/zap"

// repairWinding makes neighbouring faces agree on the direction of their
// shared edges, then turns the whole mesh outward if its volume is negative.
// It fails when the faces do not form a single connected body.
func (a *analyzer) repairWinding() (Repairs, bool) {
	g := a.faceAdjacency()
	if g.Len() == 0 {
		return RepairsNone, false
	}
	if components := g.ConnectedComponents(); len(components) > 1 {
		a.log.Debug("winding repair impossible", zap.Int("components", len(components)))
		return RepairsNone, false
	}

	shared := make(map[[2]int]CanonicalEdge, len(a.facePairs))
	for _, fp := range a.facePairs {
		if fp.shared == 1 {
			shared[[2]int{fp.a, fp.b}] = fp.edge
		}
	}

	var fixes Repairs
	flips := 0
	bfs := g.BfsEdges(g.Nodes()[0])
	for {
		u, v, ok := bfs.Next()
		if !ok {
			break
		}
		e := shared[[2]int{min(u, v), max(u, v)}]
		fu, fv := a.m.face(u), a.m.face(v)
		if traverses(fu, e.Lo, e.Hi) == traverses(fv, e.Lo, e.Hi) {
			a.m.flipFace(v)
			flips++
		}
	}
	if flips > 0 {
		fixes |= FixedWinding
	}
	a.log.Debug("winding repaired", zap.Int("flipped_faces", flips))

	a.orientOutward()
	return fixes, true
}

// orientOutward reverses every face when the signed volume is negative and
// records FlippedNormals.
func (a *analyzer) orientOutward() bool {
	vol := a.m.signedVolume()
	if vol >= 0 {
		return false
	}
	a.m.flipAll()
	a.res.Repairs |= FlippedNormals
	a.log.Debug("normals flipped", zap.Float64("signed_volume", vol))
	return true
}
