package mesh

import (
	"errors"
	"fmt"
)

// Extraction errors.
var (
	ErrNoActiveMesh   = errors.New("no active mesh to export")
	ErrMissingUVLayer = errors.New("mesh has no active UV layer")
	ErrDanglingCorner = errors.New("corner references unknown vertex")
)

// Extract copies the source into a normalized Mesh. Vertex and face order
// follow the source exactly; corner order inside each face is preserved.
// The source is never modified.
func Extract(src Source) (*Mesh, error) {
	if src == nil {
		return nil, ErrNoActiveMesh
	}

	uvs, ok := src.ActiveUVLayer()
	if !ok || uvs == nil {
		return nil, ErrMissingUVLayer
	}

	m := &Mesh{
		Name:     NameOf(src, ""),
		Vertices: make([]Vertex, src.VertexCount()),
	}

	known := make(map[int]struct{}, len(m.Vertices))
	for i := range m.Vertices {
		index, pos := src.VertexAt(i)
		m.Vertices[i] = Vertex{Index: index, Position: pos}
		known[index] = struct{}{}
	}

	m.Faces = make([]Face, src.FaceCount())
	for i := range m.Faces {
		face := src.FaceAt(i)

		material := face.MaterialIndex()
		if material < 0 {
			material = 0
		}

		corners := make([]Corner, face.CornerCount())
		for j := range corners {
			vid := face.CornerVertex(j)
			if _, ok := known[vid]; !ok {
				return nil, fmt.Errorf("%w: face %d corner %d -> vertex %d", ErrDanglingCorner, i, j, vid)
			}
			corners[j] = Corner{VertexIndex: vid, UV: uvs.CornerUV(i, j)}
		}

		m.Faces[i] = Face{MaterialIndex: material, Corners: corners}
	}

	return m, nil
}
