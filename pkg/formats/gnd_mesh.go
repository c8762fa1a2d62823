package formats

import (
	"github.com/Faultbox/dxs-export/pkg/math"
	"github.com/Faultbox/dxs-export/pkg/mesh"
)

// Tile corners in quad winding order (bottom-left, bottom-right, top-right,
// top-left) as indices into GNDTile.Altitude and the GNDSurface UVs, with
// their grid offsets.
var gndQuadCorners = [4]struct {
	slot   int
	dx, dy float32
}{
	{0, 0, 0},
	{1, 1, 0},
	{3, 1, 1},
	{2, 0, 1},
}

// GNDMesh is a mesh.Source over the top surfaces of a ground. Every textured
// tile becomes one quad with four vertices of its own, so each corner keeps
// the tile's altitude and UVs.
type GNDMesh struct {
	gnd   *GND
	name  string
	tiles []int // Indices into gnd.Tiles of tiles with a top surface
}

// MeshSource returns the ground mesh under the given object name.
func (g *GND) MeshSource(name string) *GNDMesh {
	m := &GNDMesh{gnd: g, name: name}
	for y := range int(g.Height) {
		for x := range int(g.Width) {
			if _, ok := g.TopSurface(g.GetTile(x, y)); ok {
				m.tiles = append(m.tiles, y*int(g.Width)+x)
			}
		}
	}
	return m
}

// Ground returns the parsed ground file.
func (m *GNDMesh) Ground() *GND { return m.gnd }

// Name implements mesh.Named.
func (m *GNDMesh) Name() string { return m.name }

// VertexCount implements mesh.Source.
func (m *GNDMesh) VertexCount() int { return len(m.tiles) * 4 }

// VertexAt implements mesh.Source.
func (m *GNDMesh) VertexAt(i int) (int, math.Vec3) {
	ti := m.tiles[i/4]
	c := gndQuadCorners[i%4]
	x := float32(ti%int(m.gnd.Width)) + c.dx
	y := float32(ti/int(m.gnd.Width)) + c.dy
	return i, math.Vec3{
		X: x * m.gnd.Zoom,
		Y: m.gnd.Tiles[ti].Altitude[c.slot],
		Z: y * m.gnd.Zoom,
	}
}

// FaceCount implements mesh.Source.
func (m *GNDMesh) FaceCount() int { return len(m.tiles) }

// FaceAt implements mesh.Source.
func (m *GNDMesh) FaceAt(i int) mesh.FaceSource {
	return gndQuad{first: i * 4, surface: m.surface(i)}
}

// ActiveUVLayer implements mesh.Source. Ground surfaces always carry UVs.
func (m *GNDMesh) ActiveUVLayer() (mesh.UVLayer, bool) {
	return m, true
}

// CornerUV implements mesh.UVLayer.
func (m *GNDMesh) CornerUV(face, corner int) math.Vec2 {
	s := m.surface(face)
	slot := gndQuadCorners[corner].slot
	return math.Vec2{X: s.U[slot], Y: s.V[slot]}
}

func (m *GNDMesh) surface(face int) *GNDSurface {
	s, _ := m.gnd.TopSurface(&m.gnd.Tiles[m.tiles[face]])
	return s
}

type gndQuad struct {
	first   int
	surface *GNDSurface
}

// MaterialIndex returns the surface texture; untextured surfaces are -1.
func (q gndQuad) MaterialIndex() int { return int(q.surface.TextureID) }

func (q gndQuad) CornerCount() int { return 4 }

func (q gndQuad) CornerVertex(j int) int { return q.first + j }
