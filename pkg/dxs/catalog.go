package dxs

// Color is an 8-bit RGB color.
type Color struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
}

// White is the default specular and reflective color.
var White = Color{R: 255, G: 255, B: 255}

// Material is a placeholder material record. It is written as-is and is not
// derived from the exported mesh.
type Material struct {
	ID                int     `yaml:"id"`
	Name              string  `yaml:"name"`
	Used              bool    `yaml:"used"`
	Lightmap          bool    `yaml:"lightmap"`
	CastShadows       bool    `yaml:"cast_shadows"`
	ReceiveShadows    bool    `yaml:"receive_shadows"`
	AmbientReflection float32 `yaml:"ambient_reflection"`
	DiffuseReflection float32 `yaml:"diffuse_reflection"`
	SpecularColor     Color   `yaml:"specular_color"`
	ReflectiveColor   Color   `yaml:"reflective_color"`
	LayerType         string  `yaml:"layer_type"`
	LayerBlend        string  `yaml:"layer_blend"`
	Texture           string  `yaml:"texture"`
}

// Category groups materials under a name.
type Category struct {
	Name      string     `yaml:"name"`
	Materials []Material `yaml:"materials"`
}

// Catalog is the materials section of a scene.
type Catalog struct {
	HighestID  int        `yaml:"highest_id"`
	Categories []Category `yaml:"categories"`
}

// DefaultCatalog returns the stock Artemis catalog: one textured "mine1"
// material in the System category.
func DefaultCatalog() Catalog {
	return Catalog{
		HighestID: 16,
		Categories: []Category{
			{
				Name: "System",
				Materials: []Material{
					{
						ID:                0,
						Name:              "mine1",
						Used:              true,
						Lightmap:          true,
						CastShadows:       true,
						ReceiveShadows:    true,
						AmbientReflection: 0.1,
						DiffuseReflection: 0.9,
						SpecularColor:     White,
						ReflectiveColor:   White,
						LayerType:         "texture",
						LayerBlend:        "replace",
						Texture:           `Artemis\mine1.png`,
					},
				},
			},
		},
	}
}

// Len returns the number of materials over all categories.
func (c Catalog) Len() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Materials)
	}
	return n
}
