package dxs

import (
	"io"

	"github.com/Faultbox/dxs-export/pkg/mesh"
)

// Placeholder primitive attributes used by the single-mesh export.
const (
	DefaultPrimitiveName = "mesh"
	DefaultPrimitiveType = "cylinder"
	DefaultSnap          = "none"
	NoGroup              = -1
	NoSkeleton           = -1
	NoJoint              = -1
)

// Settings is the optional scene settings block.
type Settings struct {
	Name          string
	Author        string
	Comments      string
	ShadowOpacity int
	Ambient       Color
}

// DefaultSettings returns the stock "new scene" settings.
func DefaultSettings() Settings {
	return Settings{
		Name:          "new scene",
		ShadowOpacity: 75,
		Ambient:       White,
	}
}

// Primitive is one exported mesh object.
type Primitive struct {
	ID         int
	Name       string
	Type       string
	Visible    bool
	Snap       string
	AutoUV     bool
	GroupID    int
	SkeletonID int
	Mesh       *mesh.Mesh
}

// NewPrimitive wraps an extracted mesh with the placeholder display flags.
// The name falls back to DefaultPrimitiveName when the mesh is unnamed.
func NewPrimitive(id int, m *mesh.Mesh) Primitive {
	name := m.Name
	if name == "" {
		name = DefaultPrimitiveName
	}
	return Primitive{
		ID:         id,
		Name:       name,
		Type:       DefaultPrimitiveType,
		Visible:    true,
		Snap:       DefaultSnap,
		GroupID:    NoGroup,
		SkeletonID: NoSkeleton,
		Mesh:       m,
	}
}

// Scene is a complete document.
type Scene struct {
	Settings   *Settings // nil omits the settings block
	Materials  Catalog
	Primitives []Primitive
	Skeletons  bool // write an empty skeletons stub
	Lights     bool // write an empty lights stub
}

// Writer emits scene sections in document order. Callers sequence
// Begin, the section writers and End; WriteScene does all of it.
type Writer struct {
	ew *ElementWriter
}

// NewWriter returns a scene writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{ew: NewElementWriter(w)}
}

// WriteScene writes a whole document.
func (w *Writer) WriteScene(s *Scene) error {
	w.Begin()
	if s.Settings != nil {
		w.WriteSettings(*s.Settings)
	}
	w.WriteMaterials(s.Materials)
	w.WritePrimitives(s.Primitives...)
	if s.Skeletons {
		w.WriteSkeletons()
	}
	if s.Lights {
		w.WriteLights()
	}
	return w.End()
}

// Begin opens the root element.
func (w *Writer) Begin() {
	w.ew.Open("scene", A("version", Version))
}

// End closes the root element and reports any error from the whole document.
func (w *Writer) End() error {
	w.ew.Close()
	return w.ew.Finish()
}

// Err returns the first error encountered so far.
func (w *Writer) Err() error {
	return w.ew.Err()
}

// Written returns the number of bytes written.
func (w *Writer) Written() int64 {
	return w.ew.Written()
}

// WriteSettings writes the settings block.
func (w *Writer) WriteSettings(s Settings) {
	w.ew.Open("settings",
		A("name", s.Name),
		A("author", s.Author),
		A("comments", s.Comments),
		A("shadowOpacity", Int(s.ShadowOpacity)),
	)
	w.ew.Empty("ambient", colorAttrs(s.Ambient)...)
	w.ew.Close()
}

// WriteMaterials writes the materials catalog.
func (w *Writer) WriteMaterials(c Catalog) {
	w.ew.Open("materials", A("highestID", Int(c.HighestID)))
	for _, cat := range c.Categories {
		w.ew.Open("category", A("name", cat.Name))
		for _, m := range cat.Materials {
			w.writeMaterial(m)
		}
		w.ew.Close()
	}
	w.ew.Close()
}

func (w *Writer) writeMaterial(m Material) {
	w.ew.Open("material",
		A("id", Int(m.ID)),
		A("name", m.Name),
		A("used", Bool(m.Used)),
		A("lightmap", Bool(m.Lightmap)),
		A("castShadows", Bool(m.CastShadows)),
		A("receiveShadows", Bool(m.ReceiveShadows)),
	)

	w.ew.Open("raytracing",
		A("ambientReflection", Float(m.AmbientReflection)),
		A("diffuseReflection", Float(m.DiffuseReflection)),
	)
	w.ew.Empty("specularColor", colorAttrs(m.SpecularColor)...)
	w.ew.Empty("reflectiveColor", colorAttrs(m.ReflectiveColor)...)
	w.ew.Close()

	w.ew.Open("layer", A("type", m.LayerType), A("blend", m.LayerBlend))
	w.ew.Empty("texture", A("file", m.Texture))
	w.ew.Close()

	w.ew.Close()
}

// WritePrimitives writes the primitives section. highestID is the largest
// primitive id written.
func (w *Writer) WritePrimitives(prims ...Primitive) {
	highest := 0
	for _, p := range prims {
		highest = max(highest, p.ID)
	}

	w.ew.Open("primitives", A("highestID", Int(highest)))
	for _, p := range prims {
		w.writePrimitive(p)
	}
	w.ew.Close()
}

func (w *Writer) writePrimitive(p Primitive) {
	w.ew.Open("primitive",
		A("id", Int(p.ID)),
		A("name", p.Name),
		A("type", p.Type),
		A("visible", Bool(p.Visible)),
		A("snap", p.Snap),
		A("autoUV", Bool(p.AutoUV)),
		A("groupID", Int(p.GroupID)),
		A("skeletonID", Int(p.SkeletonID)),
	)

	w.ew.Open("vertices")
	if p.Mesh != nil {
		for _, v := range p.Mesh.Vertices {
			w.ew.Empty("vertex",
				A("id", Int(v.Index)),
				A("x", Float(v.Position.X)),
				A("y", Float(v.Position.Y)),
				A("z", Float(v.Position.Z)),
				A("jointID", Int(NoJoint)),
			)
		}
	}
	w.ew.Close()

	w.ew.Open("polygons")
	if p.Mesh != nil {
		for _, f := range p.Mesh.Faces {
			w.ew.Open("poly", A("mid", Int(f.MaterialIndex)))
			for _, c := range f.Corners {
				w.ew.Empty("vertex",
					A("vid", Int(c.VertexIndex)),
					A("u0", Float(c.UV.X)),
					A("v0", Float(c.UV.Y)),
				)
			}
			w.ew.Close()
		}
	}
	w.ew.Close()

	w.ew.Close()
}

// WriteSkeletons writes an empty skeletons stub.
func (w *Writer) WriteSkeletons() {
	w.ew.Empty("skeletons")
}

// WriteLights writes an empty lights stub.
func (w *Writer) WriteLights() {
	w.ew.Empty("lights", A("highestID", Int(2)))
}

func colorAttrs(c Color) []Attr {
	return []Attr{A("r", Int(c.R)), A("g", Int(c.G)), A("b", Int(c.B))}
}
