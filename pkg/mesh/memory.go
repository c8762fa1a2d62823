package mesh

import "github.com/Faultbox/dxs-export/pkg/math"

// Memory is a Source backed by plain slices. UVs are stored per corner,
// parallel to Faces[i].Corners; missing entries read as zero. A mesh without
// faces still has a UV layer unless NoUVLayer is set.
type Memory struct {
	MeshName  string
	Indices   []int // native vertex indices, parallel to Positions; nil means slice positions
	Positions []math.Vec3
	Faces     []MemoryFace
	UVs       [][]math.Vec2
	NoUVLayer bool
}

// MemoryFace is a polygon of a Memory mesh. Corners hold native vertex indices.
type MemoryFace struct {
	Material int
	Corners  []int
}

// Name implements Named.
func (m *Memory) Name() string { return m.MeshName }

// VertexCount implements Source.
func (m *Memory) VertexCount() int { return len(m.Positions) }

// VertexAt implements Source.
func (m *Memory) VertexAt(i int) (int, math.Vec3) {
	if m.Indices != nil {
		return m.Indices[i], m.Positions[i]
	}
	return i, m.Positions[i]
}

// FaceCount implements Source.
func (m *Memory) FaceCount() int { return len(m.Faces) }

// FaceAt implements Source.
func (m *Memory) FaceAt(i int) FaceSource { return m.Faces[i] }

// ActiveUVLayer implements Source.
func (m *Memory) ActiveUVLayer() (UVLayer, bool) {
	if m.NoUVLayer {
		return nil, false
	}
	return memoryUVs(m.UVs), true
}

// AddFace appends a face with one UV per corner and returns its index.
func (m *Memory) AddFace(material int, corners []int, uvs []math.Vec2) int {
	for len(m.UVs) < len(m.Faces) {
		m.UVs = append(m.UVs, nil)
	}
	m.Faces = append(m.Faces, MemoryFace{Material: material, Corners: corners})
	m.UVs = append(m.UVs, uvs)
	return len(m.Faces) - 1
}

// MaterialIndex implements FaceSource.
func (f MemoryFace) MaterialIndex() int { return f.Material }

// CornerCount implements FaceSource.
func (f MemoryFace) CornerCount() int { return len(f.Corners) }

// CornerVertex implements FaceSource.
func (f MemoryFace) CornerVertex(j int) int { return f.Corners[j] }

type memoryUVs [][]math.Vec2

func (l memoryUVs) CornerUV(face, corner int) math.Vec2 {
	if face >= len(l) || corner >= len(l[face]) {
		return math.Vec2{}
	}
	return l[face][corner]
}
