// Package mesh defines the read-only view of a host polygon mesh and the
// normalized snapshot the exporters work from.
package mesh

import "github.com/Faultbox/dxs-export/pkg/math"

// Source is a read-only view of a polygon mesh owned by some host
// (a parsed model file, an in-memory mesh, ...). Implementations must return
// a consistent snapshot for the duration of one export.
type Source interface {
	// VertexCount returns the number of vertices.
	VertexCount() int
	// VertexAt returns the host index and position of the i-th vertex in
	// native order.
	VertexAt(i int) (index int, pos math.Vec3)
	// FaceCount returns the number of faces.
	FaceCount() int
	// FaceAt returns the i-th face in native order.
	FaceAt(i int) FaceSource
	// ActiveUVLayer returns the UV layer used for export, if the mesh has one.
	ActiveUVLayer() (UVLayer, bool)
}

// FaceSource is a read-only view of one polygon.
type FaceSource interface {
	// MaterialIndex returns the material slot; negative means unassigned.
	MaterialIndex() int
	// CornerCount returns the number of corners (3 for triangles, 4 for quads, ...).
	CornerCount() int
	// CornerVertex returns the vertex index referenced by corner j.
	CornerVertex(j int) int
}

// UVLayer resolves per-corner texture coordinates.
type UVLayer interface {
	CornerUV(face, corner int) math.Vec2
}

// Named is implemented by sources that carry an object name.
type Named interface {
	Name() string
}

// NameOf returns the source name, or fallback when the source is unnamed.
func NameOf(src Source, fallback string) string {
	if n, ok := src.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fallback
}
