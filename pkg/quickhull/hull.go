package quickhull

import "gonum.org/v1/gonum/spatial/r3"

// Hull is the result of Build. Faces are convex polygons wound
// counter-clockwise when seen from outside the hull.
type Hull struct {
	points    []r3.Vec
	source    []int
	faces     [][]int
	tolerance float64
}

// Vertices returns the hull vertices. Only points on the hull are included.
func (h *Hull) Vertices() []r3.Vec {
	return h.points
}

// SourceIndex returns the input position of hull vertex i.
func (h *Hull) SourceIndex(i int) int {
	return h.source[i]
}

// Faces returns each hull face as a loop of vertex indices.
func (h *Hull) Faces() [][]int {
	return h.faces
}

// Tolerance returns the distance tolerance the hull was built with.
func (h *Hull) Tolerance() float64 {
	return h.tolerance
}

// Triangles fans every face into triangles and returns a flat index stream
// over Vertices.
func (h *Hull) Triangles() []uint32 {
	n := 0
	for _, f := range h.faces {
		n += 3 * (len(f) - 2)
	}
	out := make([]uint32, 0, n)
	for _, f := range h.faces {
		for i := 1; i+1 < len(f); i++ {
			out = append(out, uint32(f[0]), uint32(f[i]), uint32(f[i+1]))
		}
	}
	return out
}
