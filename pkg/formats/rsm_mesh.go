package formats

import (
	"fmt"

	"github.com/Faultbox/dxs-export/pkg/math"
	"github.com/Faultbox/dxs-export/pkg/mesh"
)

// RSMMesh is a mesh.Source over one RSM node. Faces are the node triangles,
// material indices are model texture indices.
type RSMMesh struct {
	rsm  *RSM
	node *RSMNode
}

// MeshSource returns the mesh of the named node. An empty name selects the
// root node.
func (rsm *RSM) MeshSource(nodeName string) (*RSMMesh, error) {
	var node *RSMNode
	if nodeName == "" {
		node = rsm.GetRootNode()
	} else {
		node = rsm.GetNodeByName(nodeName)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %q", ErrRSMNodeNotFound, nodeName)
	}
	return &RSMMesh{rsm: rsm, node: node}, nil
}

// Model returns the parsed model the node belongs to.
func (m *RSMMesh) Model() *RSM { return m.rsm }

// Node returns the exported node.
func (m *RSMMesh) Node() *RSMNode { return m.node }

// Name implements mesh.Named.
func (m *RSMMesh) Name() string { return m.node.Name }

// VertexCount implements mesh.Source.
func (m *RSMMesh) VertexCount() int { return len(m.node.Vertices) }

// VertexAt implements mesh.Source.
func (m *RSMMesh) VertexAt(i int) (int, math.Vec3) {
	return i, math.Vec3From(m.node.Vertices[i])
}

// FaceCount implements mesh.Source.
func (m *RSMMesh) FaceCount() int { return len(m.node.Faces) }

// FaceAt implements mesh.Source.
func (m *RSMMesh) FaceAt(i int) mesh.FaceSource {
	return rsmFace{face: &m.node.Faces[i], textures: m.node.TextureIDs}
}

// ActiveUVLayer implements mesh.Source. Nodes without texture coordinates
// have no UV layer.
func (m *RSMMesh) ActiveUVLayer() (mesh.UVLayer, bool) {
	if len(m.node.TexCoords) == 0 {
		return nil, false
	}
	return m, true
}

// CornerUV implements mesh.UVLayer.
func (m *RSMMesh) CornerUV(face, corner int) math.Vec2 {
	id := int(m.node.Faces[face].TexCoordIDs[corner])
	if id >= len(m.node.TexCoords) {
		return math.Vec2{}
	}
	tc := m.node.TexCoords[id]
	return math.Vec2{X: tc.U, Y: tc.V}
}

type rsmFace struct {
	face     *RSMFace
	textures []int32
}

// MaterialIndex maps the node-local texture slot to the model texture index.
func (f rsmFace) MaterialIndex() int {
	id := int(f.face.TextureID)
	if id >= len(f.textures) {
		return 0
	}
	return int(f.textures[id])
}

func (f rsmFace) CornerCount() int { return 3 }

func (f rsmFace) CornerVertex(j int) int { return int(f.face.VertexIDs[j]) }
