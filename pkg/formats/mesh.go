// Package formats reads and writes the YAML mesh documents used by meshtool.
//
// A document lists vertex positions and, optionally, a flat triangle index
// list. Documents without indices are point clouds and are only useful as
// hull input.
//
//	name: tetra
//	vertices:
//	  - [0, 0, 0]
//	  - [1, 0, 0]
//	  - [0, 1, 0]
//	  - [0, 0, 1]
//	indices: [0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3]
package formats

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/simplemesh/pkg/math"
	"github.com/Faultbox/simplemesh/pkg/mesh"
)

// Mesh document errors.
var (
	ErrNoVertices    = errors.New("mesh document has no vertices")
	ErrVertexArity   = errors.New("vertex must have exactly 3 coordinates")
	ErrNotTriangles  = errors.New("index count is not a multiple of 3")
	ErrIndexOutRange = errors.New("index out of range")
)

// Vertex is one position row. It is written in flow style: [x, y, z].
type Vertex []float32

// MarshalYAML writes the vertex as a single-line sequence.
func (v Vertex) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range v {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(float64(c), 'g', -1, 32),
		})
	}
	return n, nil
}

// MeshDocument is the on-disk form of a mesh or point cloud.
type MeshDocument struct {
	Name     string   `yaml:"name,omitempty"`
	Vertices []Vertex `yaml:"vertices"`
	Indices  []uint32 `yaml:"indices,omitempty,flow"`
}

// ParseMeshDocument parses a mesh document from YAML.
func ParseMeshDocument(data []byte) (*MeshDocument, error) {
	var doc MeshDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mesh document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseMeshDocumentFile parses a mesh document from disk.
func ParseMeshDocumentFile(path string) (*MeshDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh document: %w", err)
	}
	return ParseMeshDocument(data)
}

// Validate checks the document shape. Topology is left to the mesh package.
func (d *MeshDocument) Validate() error {
	if len(d.Vertices) == 0 {
		return ErrNoVertices
	}
	for i, v := range d.Vertices {
		if len(v) != 3 {
			return fmt.Errorf("%w: vertex %d has %d", ErrVertexArity, i, len(v))
		}
	}
	if len(d.Indices)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrNotTriangles, len(d.Indices))
	}
	for i, idx := range d.Indices {
		if int(idx) >= len(d.Vertices) {
			return fmt.Errorf("%w: index %d at position %d", ErrIndexOutRange, idx, i)
		}
	}
	return nil
}

// IsPointCloud reports whether the document carries no faces.
func (d *MeshDocument) IsPointCloud() bool {
	return len(d.Indices) == 0
}

// Positions returns the vertices as points.
func (d *MeshDocument) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(d.Vertices))
	for i, v := range d.Vertices {
		out[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	return out
}

// Geometry returns the document as triangle-list geometry.
func (d *MeshDocument) Geometry() mesh.Geometry {
	return mesh.Geometry{
		Kind:      mesh.Triangles,
		Positions: d.Positions(),
		Indices:   d.Indices,
	}
}

// NewMeshDocument captures the current geometry of m.
func NewMeshDocument(name string, m *mesh.Mesh) *MeshDocument {
	verts := m.Vertices()
	doc := &MeshDocument{
		Name:     name,
		Vertices: make([]Vertex, len(verts)),
		Indices:  m.Indices(),
	}
	for i, v := range verts {
		doc.Vertices[i] = Vertex{v.X, v.Y, v.Z}
	}
	return doc
}

// Marshal encodes the document as YAML.
func (d *MeshDocument) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding mesh document: %w", err)
	}
	return data, nil
}

// WriteFile writes the document to path.
func (d *MeshDocument) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing mesh document: %w", err)
	}
	return nil
}
