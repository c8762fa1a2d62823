package formats

import (
	"errors"
	"fmt"
	"os"
)

// GND format errors.
var (
	ErrInvalidGNDMagic       = errors.New("invalid GND magic: expected 'GRGN'")
	ErrUnsupportedGNDVersion = errors.New("unsupported GND version")
	ErrTruncatedGNDData      = errors.New("truncated GND data")
)

// GNDVersion represents the GND file version.
type GNDVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GNDVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GNDSurface is a textured tile face. Corners follow the tile altitude order:
// bottom-left, bottom-right, top-left, top-right.
type GNDSurface struct {
	U          [4]float32
	V          [4]float32
	TextureID  int16 // -1 = no texture
	LightmapID int16
	Color      [4]uint8 // BGRA
}

// GNDTile is one cell of the ground grid.
type GNDTile struct {
	Altitude     [4]float32 // bottom-left, bottom-right, top-left, top-right
	TopSurface   int32      // -1 = none
	FrontSurface int32
	RightSurface int32
}

// GND is a parsed ground file.
type GND struct {
	Version  GNDVersion
	Width    uint32
	Height   uint32
	Zoom     float32 // Tile edge length in world units
	Textures []string
	Surfaces []GNDSurface
	Tiles    []GNDTile // Row-major, Width*Height
}

// GetTile returns the tile at the given coordinates, or nil when out of bounds.
func (g *GND) GetTile(x, y int) *GNDTile {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Tiles[y*int(g.Width)+x]
}

// TopSurface returns the surface on top of the tile, if it has a valid one.
func (g *GND) TopSurface(t *GNDTile) (*GNDSurface, bool) {
	if t.TopSurface < 0 || int(t.TopSurface) >= len(g.Surfaces) {
		return nil, false
	}
	return &g.Surfaces[t.TopSurface], true
}

// ParseGND parses a GND file from raw bytes.
func ParseGND(data []byte) (*GND, error) {
	if len(data) < 18 {
		return nil, ErrTruncatedGNDData
	}
	if string(data[0:4]) != "GRGN" {
		return nil, ErrInvalidGNDMagic
	}

	version := GNDVersion{Major: data[4], Minor: data[5]}
	if version.Major != 1 || version.Minor < 5 || version.Minor > 9 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGNDVersion, version)
	}

	br := newBinReader(data[6:], ErrTruncatedGNDData)
	gnd := &GND{Version: version}

	br.read(&gnd.Width, "width")
	br.read(&gnd.Height, "height")
	br.read(&gnd.Zoom, "zoom")
	if br.err != nil {
		return nil, br.err
	}
	if gnd.Width == 0 || gnd.Height == 0 || gnd.Width > 1024 || gnd.Height > 1024 {
		return nil, fmt.Errorf("invalid GND dimensions: %dx%d", gnd.Width, gnd.Height)
	}

	var textureCount, textureNameLen uint32
	br.read(&textureCount, "texture count")
	br.read(&textureNameLen, "texture name length")
	if br.err == nil && (textureCount > 10000 || textureNameLen > 1024) {
		return nil, fmt.Errorf("invalid GND texture table: %d names of %d bytes", textureCount, textureNameLen)
	}
	gnd.Textures = make([]string, textureCount)
	for i := range gnd.Textures {
		gnd.Textures[i] = br.str(int(textureNameLen), "texture name")
	}

	// Lightmaps are not part of the exported geometry; skip them.
	var lightmapCount, lightmapWidth, lightmapHeight, lightmapCells uint32
	br.read(&lightmapCount, "lightmap count")
	br.read(&lightmapWidth, "lightmap width")
	br.read(&lightmapHeight, "lightmap height")
	br.read(&lightmapCells, "lightmap cells")
	pixels := int64(lightmapWidth) * int64(lightmapHeight) * int64(lightmapCells)
	br.skip(int64(lightmapCount)*pixels*4, "lightmaps")

	var surfaceCount uint32
	br.read(&surfaceCount, "surface count")
	if br.err != nil {
		return nil, br.err
	}
	// Each surface is 40 bytes; reject counts the data cannot hold.
	if int64(surfaceCount)*40 > int64(br.remaining()) {
		return nil, fmt.Errorf("%w: %d surfaces", ErrTruncatedGNDData, surfaceCount)
	}
	gnd.Surfaces = make([]GNDSurface, surfaceCount)
	for i := range gnd.Surfaces {
		s := &gnd.Surfaces[i]
		br.read(&s.U, "surface u")
		br.read(&s.V, "surface v")
		br.read(&s.TextureID, "surface texture id")
		br.read(&s.LightmapID, "surface lightmap id")
		br.read(&s.Color, "surface color")
		if br.err != nil {
			return nil, fmt.Errorf("parsing surface %d: %w", i, br.err)
		}
	}

	gnd.Tiles = make([]GNDTile, gnd.Width*gnd.Height)
	for i := range gnd.Tiles {
		tile := &gnd.Tiles[i]
		br.read(&tile.Altitude, "altitude")
		br.read(&tile.TopSurface, "top surface")
		br.read(&tile.FrontSurface, "front surface")
		br.read(&tile.RightSurface, "right surface")
		if br.err != nil {
			return nil, fmt.Errorf("parsing tile %d: %w", i, br.err)
		}
	}

	return gnd, nil
}

// ParseGNDFile parses a GND file from disk.
func ParseGNDFile(path string) (*GND, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GND file: %w", err)
	}
	return ParseGND(data)
}
