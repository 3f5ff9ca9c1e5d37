package mesh

// DirectedEdge is an edge taken from a face in winding order.
type DirectedEdge struct {
	From, To uint32
	Face     int
}

// Canonical returns the undirected key of the edge.
func (e DirectedEdge) Canonical() CanonicalEdge {
	if e.From < e.To {
		return CanonicalEdge{Lo: e.From, Hi: e.To}
	}
	return CanonicalEdge{Lo: e.To, Hi: e.From}
}

// Reverses reports whether o runs along the same edge in the opposite
// direction.
func (e DirectedEdge) Reverses(o DirectedEdge) bool {
	return e.From == o.To && e.To == o.From
}

// CanonicalEdge is an undirected edge with the smaller index first. It only
// identifies shared edges and carries no orientation.
type CanonicalEdge struct {
	Lo, Hi uint32
}

// DirectedEdges returns A->B, B->C, C->A for every face of a flat triangle
// index list. Edge k belongs to face k/3.
func DirectedEdges(indices []uint32) []DirectedEdge {
	edges := make([]DirectedEdge, 0, len(indices))
	for f := 0; f+2 < len(indices); f += 3 {
		a, b, c := indices[f], indices[f+1], indices[f+2]
		face := f / 3
		edges = append(edges,
			DirectedEdge{From: a, To: b, Face: face},
			DirectedEdge{From: b, To: c, Face: face},
			DirectedEdge{From: c, To: a, Face: face},
		)
	}
	return edges
}

// CanonicalEdges returns the undirected key of each edge, in the same order.
func CanonicalEdges(edges []DirectedEdge) []CanonicalEdge {
	out := make([]CanonicalEdge, len(edges))
	for i, e := range edges {
		out[i] = e.Canonical()
	}
	return out
}

// DuplicatePairIndices groups equal values and returns every pair of
// positions holding the same value. A value seen k times yields k*(k-1)/2
// pairs. Pairs are emitted in scan order, each as (earlier, later).
func DuplicatePairIndices[T comparable](values []T) [][2]int {
	seen := make(map[T][]int, len(values))
	var pairs [][2]int
	for i, v := range values {
		prev := seen[v]
		for _, j := range prev {
			pairs = append(pairs, [2]int{j, i})
		}
		seen[v] = append(prev, i)
	}
	return pairs
}

// edgeUses counts how many directed edges use each canonical edge. keys holds
// the canonical edges in first-seen order.
func edgeUses(canon []CanonicalEdge) (keys []CanonicalEdge, uses map[CanonicalEdge]int) {
	uses = make(map[CanonicalEdge]int, len(canon))
	for _, c := range canon {
		if uses[c] == 0 {
			keys = append(keys, c)
		}
		uses[c]++
	}
	return keys, uses
}

// traverses reports whether face walks the edge from -> to.
func traverses(face [3]uint32, from, to uint32) bool {
	for k := 0; k < 3; k++ {
		if face[k] == from && face[(k+1)%3] == to {
			return true
		}
	}
	return false
}
