package mesh

import "github.com/Faultbox/simplemesh/pkg/math"

// Unit cube, every face wound counter-clockwise seen from outside.
var cubeVertices = []math.Vec3{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 1, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 1, Y: 0, Z: 1},
	{X: 1, Y: 1, Z: 1},
	{X: 0, Y: 1, Z: 1},
}

var cubeIndices = []uint32{
	0, 2, 1, 0, 3, 2, // bottom
	4, 5, 6, 4, 6, 7, // top
	0, 1, 5, 0, 5, 4, // front
	3, 7, 6, 3, 6, 2, // back
	0, 4, 7, 0, 7, 3, // left
	1, 2, 6, 1, 6, 5, // right
}

// dentedCube is the cube with its top pushed in to a point at the centre.
func dentedCube() ([]math.Vec3, []uint32) {
	vertices := append(cloneVertices(cubeVertices), math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	indices := append([]uint32{}, cubeIndices[:6]...)
	indices = append(indices, cubeIndices[12:]...)
	indices = append(indices,
		4, 5, 8,
		5, 6, 8,
		6, 7, 8,
		7, 4, 8,
	)
	return vertices, indices
}

// twoCubes places a second cube five units along X.
func twoCubes() ([]math.Vec3, []uint32) {
	vertices := cloneVertices(cubeVertices)
	for _, v := range cubeVertices {
		vertices = append(vertices, v.Add(math.Vec3{X: 5}))
	}
	indices := append([]uint32{}, cubeIndices...)
	for _, idx := range cubeIndices {
		indices = append(indices, idx+uint32(len(cubeVertices)))
	}
	return vertices, indices
}

// projectivePlane is the six-vertex triangulation of the real projective
// plane: closed, every edge shared by two faces, and not orientable.
func projectivePlane() ([]math.Vec3, []uint32) {
	vertices := []math.Vec3{
		{X: 1}, {Y: 1}, {Z: 1},
		{X: -1}, {Y: -1}, {Z: -1},
	}
	indices := []uint32{
		0, 1, 2, 0, 2, 3, 0, 3, 4, 0, 4, 5, 0, 5, 1,
		1, 2, 4, 2, 3, 5, 3, 4, 1, 4, 5, 2, 5, 1, 3,
	}
	return vertices, indices
}

// flipped reverses the winding of the listed faces.
func flipped(indices []uint32, faces ...int) []uint32 {
	out := append([]uint32{}, indices...)
	for _, f := range faces {
		out[3*f], out[3*f+2] = out[3*f+2], out[3*f]
	}
	return out
}

func allFaces(indices []uint32) []int {
	faces := make([]int, len(indices)/3)
	for i := range faces {
		faces[i] = i
	}
	return faces
}

func cloneVertices(v []math.Vec3) []math.Vec3 {
	return append([]math.Vec3{}, v...)
}
