package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/dxs-export/internal/config"
	"github.com/Faultbox/dxs-export/pkg/dxs"
	"github.com/Faultbox/dxs-export/pkg/math"
	"github.com/Faultbox/dxs-export/pkg/mesh"
)

func triangle() *mesh.Memory {
	m := &mesh.Memory{
		Positions: []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	}
	m.AddFace(0, []int{0, 1, 2}, []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}})
	return m
}

type parsedScene struct {
	Primitives struct {
		HighestID int `xml:"highestID,attr"`
		Primitive []struct {
			ID       int    `xml:"id,attr"`
			Name     string `xml:"name,attr"`
			Type     string `xml:"type,attr"`
			Vertices []struct {
				ID int     `xml:"id,attr"`
				X  float32 `xml:"x,attr"`
				Y  float32 `xml:"y,attr"`
				Z  float32 `xml:"z,attr"`
			} `xml:"vertices>vertex"`
			Polys []struct {
				Mid     int `xml:"mid,attr"`
				Corners []struct {
					Vid int     `xml:"vid,attr"`
					U   float32 `xml:"u0,attr"`
					V   float32 `xml:"v0,attr"`
				} `xml:"vertex"`
			} `xml:"polygons>poly"`
		} `xml:"primitive"`
	} `xml:"primitives"`
}

func parse(t *testing.T, doc []byte) parsedScene {
	t.Helper()
	var s parsedScene
	require.NoError(t, xml.Unmarshal(doc, &s))
	require.Len(t, s.Primitives.Primitive, 1)
	return s
}

func TestEnsureExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"out.dxs", "out.dxs"},
		{"out.DXS", "out.DXS"},
		{"out", "out.dxs"},
		{"out.xml", "out.dxs"},
		{"dir.v2/model", "dir.v2/model.dxs"},
		{"model.tar.gz", "model.tar.dxs"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EnsureExtension(tt.in), tt.in)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "writing", Writing.String())
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestExport_Triangle(t *testing.T) {
	dir := t.TempDir()
	e := New(nil, nil)
	assert.Equal(t, Idle, e.State())

	res := e.Export(filepath.Join(dir, "tri"), triangle())
	require.NoError(t, res.Err)

	assert.Equal(t, Finished, res.State)
	assert.Equal(t, Finished, e.State())
	assert.Equal(t, filepath.Join(dir, "tri.dxs"), res.Path)
	assert.Equal(t, 3, res.Vertices)
	assert.Equal(t, 1, res.Faces)
	assert.Equal(t, 3, res.Corners)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), res.Bytes)

	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, `<scene version="1.6">`+"\n"))
	assert.True(t, strings.HasSuffix(doc, "</scene>\n"))
	assert.Contains(t, doc, `    <primitives highestID="1">`+"\n")
	assert.Contains(t, doc, `                <vertex id="1" x="1" y="0" z="0" jointID="-1" />`+"\n")
	assert.Contains(t, doc, `                <poly mid="0">`+"\n"+
		`                    <vertex vid="0" u0="0" v0="0" />`+"\n"+
		`                    <vertex vid="1" u0="1" v0="0" />`+"\n"+
		`                    <vertex vid="2" u0="0" v0="1" />`+"\n")
	assert.Equal(t, 1, strings.Count(doc, "<primitive "))
	assert.Equal(t, 1, strings.Count(doc, "<poly "))
}

func TestExport_MissingUVLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.dxs")
	src := &mesh.Memory{
		Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:     []mesh.MemoryFace{{Corners: []int{0, 1, 2}}},
		NoUVLayer: true,
	}

	e := New(nil, nil)
	res := e.Export(path, src)

	assert.Equal(t, Failed, res.State)
	assert.Equal(t, Failed, e.State())
	assert.ErrorIs(t, res.Err, mesh.ErrMissingUVLayer)
	assert.Zero(t, res.Bytes)
	assert.NoFileExists(t, path)
}

func TestExport_NoActiveMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.dxs")

	res := New(nil, nil).Export(path, nil)

	assert.Equal(t, Failed, res.State)
	assert.ErrorIs(t, res.Err, mesh.ErrNoActiveMesh)
	assert.NoFileExists(t, path)
}

func TestExport_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.dxs")

	res := New(nil, nil).Export(path, triangle())

	assert.Equal(t, Failed, res.State)
	assert.Error(t, res.Err)
	assert.Equal(t, 3, res.Vertices)
}

func TestExport_Idempotent(t *testing.T) {
	dir := t.TempDir()
	e := New(nil, nil)
	src := randomMesh(rand.New(rand.NewPCG(7, 11)), 40, 25)

	first := e.Export(filepath.Join(dir, "a.dxs"), src)
	second := e.Export(filepath.Join(dir, "b.dxs"), src)
	require.NoError(t, first.Err)
	require.NoError(t, second.Err)

	a, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	b, err := os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Overwriting an existing file gives the same bytes again.
	third := e.Export(first.Path, src)
	require.NoError(t, third.Err)
	c, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestExport_ZeroFaces(t *testing.T) {
	src := &mesh.Memory{
		Positions: []math.Vec3{{X: 1}, {X: 2}},
	}

	var buf bytes.Buffer
	_, err := New(nil, nil).WriteTo(&buf, src)
	require.NoError(t, err)

	s := parse(t, buf.Bytes())
	prim := s.Primitives.Primitive[0]
	assert.Len(t, prim.Vertices, 2)
	assert.Empty(t, prim.Polys)
	assert.Contains(t, buf.String(), "<polygons>\n")
	assert.Contains(t, buf.String(), "</polygons>\n")
}

// randomMesh builds a mesh whose host vertex indices are sparse and shuffled
// relative to position order, with random polygons of 3 to 6 corners.
func randomMesh(r *rand.Rand, vertices, faces int) *mesh.Memory {
	m := &mesh.Memory{MeshName: "random", Indices: make([]int, vertices)}
	for i := range vertices {
		m.Indices[i] = i*10 + 3
		m.Positions = append(m.Positions, math.Vec3{
			X: r.Float32()*200 - 100,
			Y: r.Float32() * 1e-3,
			Z: float32(r.IntN(1000)) / 8,
		})
	}
	r.Shuffle(len(m.Indices), func(i, j int) {
		m.Indices[i], m.Indices[j] = m.Indices[j], m.Indices[i]
	})
	for range faces {
		n := 3 + r.IntN(4)
		corners := make([]int, n)
		uvs := make([]math.Vec2, n)
		for j := range corners {
			corners[j] = m.Indices[r.IntN(vertices)]
			uvs[j] = math.Vec2{X: r.Float32(), Y: r.Float32()}
		}
		m.AddFace(r.IntN(4)-1, corners, uvs)
	}
	return m
}

func TestWriteTo_RandomMeshWithoutFaces(t *testing.T) {
	src := randomMesh(rand.New(rand.NewPCG(3, 4)), 5, 0)

	var buf bytes.Buffer
	_, err := New(nil, nil).WriteTo(&buf, src)
	require.NoError(t, err)

	prim := parse(t, buf.Bytes()).Primitives.Primitive[0]
	require.Len(t, prim.Vertices, 5)
	for k, v := range prim.Vertices {
		assert.Equal(t, src.Indices[k], v.ID)
	}
	assert.Empty(t, prim.Polys)
}

func TestWriteTo_MatchesSource(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := range 20 {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			// Face counts include zero.
			src := randomMesh(r, 3+r.IntN(50), r.IntN(40))

			var buf bytes.Buffer
			n, err := New(nil, nil).WriteTo(&buf, src)
			require.NoError(t, err)
			assert.EqualValues(t, buf.Len(), n)

			prim := parse(t, buf.Bytes()).Primitives.Primitive[0]

			// Vertices: same count, ids and exact coordinates, in order.
			require.Len(t, prim.Vertices, src.VertexCount())
			ids := make(map[int]bool)
			for k, v := range prim.Vertices {
				index, pos := src.VertexAt(k)
				assert.Equal(t, index, v.ID)
				assert.Equal(t, pos, math.Vec3{X: v.X, Y: v.Y, Z: v.Z})
				ids[v.ID] = true
			}

			// Polygons: same count, corner order, mid, and every vid resolves.
			uvs, _ := src.ActiveUVLayer()
			require.Len(t, prim.Polys, src.FaceCount())
			for f, poly := range prim.Polys {
				face := src.FaceAt(f)
				assert.Equal(t, max(face.MaterialIndex(), 0), poly.Mid)
				require.Len(t, poly.Corners, face.CornerCount())
				for j, c := range poly.Corners {
					assert.Equal(t, face.CornerVertex(j), c.Vid)
					assert.True(t, ids[c.Vid], "vid %d does not resolve", c.Vid)
					assert.Equal(t, uvs.CornerUV(f, j), math.Vec2{X: c.U, Y: c.V})
				}
			}
		})
	}
}

func TestWriteTo_Config(t *testing.T) {
	cfg := config.Default()
	cfg.Export.PrimitiveType = "box"
	cfg.Export.IncludeSettings = true
	cfg.Export.IncludeSkeletons = true
	cfg.Export.IncludeLights = true
	cfg.Materials.HighestID = 3

	var buf bytes.Buffer
	_, err := New(cfg, nil).WriteTo(&buf, triangle())
	require.NoError(t, err)

	doc := buf.String()
	assert.Contains(t, doc, `type="box"`)
	assert.Contains(t, doc, `<materials highestID="3">`)
	assert.Contains(t, doc, `<settings name="new scene" author="" comments="" shadowOpacity="75">`)
	assert.Contains(t, doc, "    <skeletons />\n")
	assert.Contains(t, doc, `    <lights highestID="2" />`)
	assert.Less(t, strings.Index(doc, "<settings"), strings.Index(doc, "<materials"))
	assert.Less(t, strings.Index(doc, "</primitives>"), strings.Index(doc, "<skeletons"))
}

func TestWriteTo_PrimitiveName(t *testing.T) {
	named := triangle()
	named.MeshName = "tree01"

	tests := []struct {
		name     string
		src      *mesh.Memory
		cfgName  string
		override bool
		want     string
	}{
		{"unnamed uses default", triangle(), "", false, dxs.DefaultPrimitiveName},
		{"unnamed uses config", triangle(), "rock", false, "rock"},
		{"source name wins", named, "rock", false, "tree01"},
		{"override wins", named, "rock", true, "rock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Export.PrimitiveName = tt.cfgName
			cfg.Export.OverrideName = tt.override

			var buf bytes.Buffer
			_, err := New(cfg, nil).WriteTo(&buf, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parse(t, buf.Bytes()).Primitives.Primitive[0].Name)
		})
	}
}

func TestWriteTo_EscapesName(t *testing.T) {
	src := triangle()
	src.MeshName = `a<b & "c"`

	var buf bytes.Buffer
	_, err := New(nil, nil).WriteTo(&buf, src)
	require.NoError(t, err)
	assert.Equal(t, src.MeshName, parse(t, buf.Bytes()).Primitives.Primitive[0].Name)
}

func TestWriteTo_FlipV(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(nil, nil).WriteTo(&buf, mesh.FlipV(triangle()))
	require.NoError(t, err)

	corners := parse(t, buf.Bytes()).Primitives.Primitive[0].Polys[0].Corners
	assert.Equal(t, float32(1), corners[0].V)
	assert.Equal(t, float32(0), corners[2].V)
}

type failingWriter struct {
	limit int
	n     int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.limit {
		k := w.limit - w.n
		w.n = w.limit
		return k, errDiskFull
	}
	w.n += len(p)
	return len(p), nil
}

func TestWriteTo_SinkFailure(t *testing.T) {
	w := &failingWriter{limit: 100}
	n, err := New(nil, nil).WriteTo(w, triangle())

	assert.ErrorIs(t, err, dxs.ErrSinkWrite)
	assert.ErrorIs(t, err, errDiskFull)
	assert.EqualValues(t, 100, n)
}

type closeFailer struct {
	bytes.Buffer
	err error
}

func (c *closeFailer) Close() error { return c.err }

var errStaleHandle = errors.New("stale file handle")

func TestWriteAndClose(t *testing.T) {
	m, err := mesh.Extract(triangle())
	require.NoError(t, err)

	t.Run("close failure", func(t *testing.T) {
		wc := &closeFailer{err: errStaleHandle}
		n, err := New(nil, nil).writeAndClose(wc, "tri.dxs", m)

		assert.ErrorIs(t, err, dxs.ErrSinkWrite)
		assert.ErrorIs(t, err, errStaleHandle)
		assert.ErrorContains(t, err, "closing tri.dxs")
		assert.EqualValues(t, wc.Len(), n)
	})

	t.Run("clean close", func(t *testing.T) {
		wc := &closeFailer{}
		n, err := New(nil, nil).writeAndClose(wc, "tri.dxs", m)

		require.NoError(t, err)
		assert.EqualValues(t, wc.Len(), n)
		assert.True(t, strings.HasSuffix(wc.String(), "</scene>\n"))
	})
}

func TestExport_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := New(nil, zap.New(core))

	res := e.Export(filepath.Join(t.TempDir(), "tri.dxs"), triangle())
	require.NoError(t, res.Err)

	finished := logs.FilterMessage("export finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.EqualValues(t, 3, fields["vertices"])
	assert.EqualValues(t, 1, fields["faces"])
	assert.Equal(t, res.Path, fields["path"])

	e.Export(filepath.Join(t.TempDir(), "none.dxs"), nil)
	assert.Equal(t, 1, logs.FilterMessage("export failed").Len())
}
