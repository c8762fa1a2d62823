package mesh

import "github.com/Faultbox/dxs-export/pkg/math"

// Vertex is a vertex snapshot.
type Vertex struct {
	Index    int       // Host-assigned index, referenced by corners
	Position math.Vec3 // Position, copied verbatim
}

// Corner is one (face, vertex) incidence.
type Corner struct {
	VertexIndex int       // Index of the referenced vertex
	UV          math.Vec2 // Texture coordinate of this corner
}

// Face is a polygon snapshot. Corner order is the authored winding.
type Face struct {
	MaterialIndex int
	Corners       []Corner
}

// Mesh is the normalized snapshot produced by Extract.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    []Face
}

// CornerCount returns the total number of corners over all faces.
func (m *Mesh) CornerCount() int {
	total := 0
	for _, f := range m.Faces {
		total += len(f.Corners)
	}
	return total
}

// Bounds returns the axis-aligned bounding box of all vertices.
// An empty mesh returns zero vectors.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	if len(m.Vertices) == 0 {
		return math.Vec3{}, math.Vec3{}
	}
	lo = m.Vertices[0].Position
	hi = lo
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi
}
