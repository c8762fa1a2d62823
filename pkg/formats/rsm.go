package formats

import (
	"errors"
	"fmt"
	"os"
)

// RSM format errors.
var (
	ErrInvalidRSMMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedRSMVersion = errors.New("unsupported RSM version")
	ErrTruncatedRSMData      = errors.New("truncated RSM data")
	ErrRSMNodeNotFound       = errors.New("RSM node not found")
)

// Upper bounds for element counts; anything larger is a corrupt file.
const (
	rsmMaxNodes    = 10000
	rsmMaxElements = 100000
	rsmMaxKeys     = 10000
	rsmNameLen     = 40
)

// RSMVersion represents the RSM file version.
type RSMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v RSMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSMVersion) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// RSMShadingType represents the shading mode for rendering.
type RSMShadingType int32

const (
	RSMShadingNone   RSMShadingType = 0
	RSMShadingFlat   RSMShadingType = 1
	RSMShadingSmooth RSMShadingType = 2
)

// String returns a human-readable shading type name.
func (s RSMShadingType) String() string {
	switch s {
	case RSMShadingNone:
		return "None"
	case RSMShadingFlat:
		return "Flat"
	case RSMShadingSmooth:
		return "Smooth"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// RSMTexCoord is a texture coordinate with its vertex color.
type RSMTexCoord struct {
	Color [4]uint8 // RGBA vertex color (v1.2+)
	U, V  float32
}

// RSMFace is a triangle. Corner j uses VertexIDs[j] and TexCoordIDs[j].
type RSMFace struct {
	VertexIDs   [3]uint16
	TexCoordIDs [3]uint16
	TextureID   uint16 // Index into the node's TextureIDs
	TwoSide     int32
	SmoothGroup int32 // v1.2+
}

// RSMNode is one mesh of the model hierarchy. Vertices are in node-local space.
type RSMNode struct {
	Name       string
	Parent     string
	TextureIDs []int32 // Indices into RSM.Textures
	Vertices   [][3]float32
	TexCoords  []RSMTexCoord
	Faces      []RSMFace
}

// RSM is a parsed model file.
type RSM struct {
	Version  RSMVersion
	Shading  RSMShadingType
	Alpha    float32 // Global alpha (0-1), 1 before v1.4
	Textures []string
	RootNode string
	Nodes    []RSMNode
}

// ParseRSM parses RSM data from a byte slice.
func ParseRSM(data []byte) (*RSM, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSMData
	}
	if string(data[:4]) != "GRSM" {
		return nil, ErrInvalidRSMMagic
	}

	rsm := &RSM{
		Version: RSMVersion{Major: data[4], Minor: data[5]},
		Alpha:   1.0,
	}
	if rsm.Version.Major < 1 || rsm.Version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, rsm.Version)
	}

	br := newBinReader(data[6:], ErrTruncatedRSMData)

	var animLength int32
	br.read(&animLength, "animation length")
	br.read(&rsm.Shading, "shading type")

	if rsm.Version.AtLeast(1, 4) {
		var alpha uint8
		br.read(&alpha, "alpha")
		rsm.Alpha = float32(alpha) / 255.0
	}

	br.skip(16, "reserved header")

	textureCount := br.count(rsmMaxElements, "texture")
	rsm.Textures = make([]string, textureCount)
	for i := range rsm.Textures {
		rsm.Textures[i] = br.str(rsmNameLen, "texture name")
	}

	rsm.RootNode = br.str(rsmNameLen, "root node name")

	nodeCount := br.count(rsmMaxNodes, "node")
	if br.err != nil {
		return nil, br.err
	}

	rsm.Nodes = make([]RSMNode, nodeCount)
	for i := range rsm.Nodes {
		if err := parseRSMNode(br, rsm.Version, &rsm.Nodes[i]); err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, err)
		}
	}

	// Volume boxes follow the nodes; they carry no mesh data and are not read.
	return rsm, nil
}

func parseRSMNode(br *binReader, version RSMVersion, node *RSMNode) error {
	node.Name = br.str(rsmNameLen, "node name")
	node.Parent = br.str(rsmNameLen, "parent name")

	node.TextureIDs = make([]int32, br.count(rsmMaxElements, "node texture"))
	br.read(node.TextureIDs, "node texture ids")

	// 3x3 matrix, offset, position, rotation angle and axis, scale.
	br.skip(9*4+3*4+3*4+4+3*4+3*4, "node transform")

	node.Vertices = make([][3]float32, br.count(rsmMaxElements, "vertex"))
	br.read(node.Vertices, "vertices")

	node.TexCoords = make([]RSMTexCoord, br.count(rsmMaxElements, "texcoord"))
	for i := range node.TexCoords {
		tc := &node.TexCoords[i]
		if version.AtLeast(1, 2) {
			br.read(&tc.Color, "texcoord color")
		} else {
			tc.Color = [4]uint8{255, 255, 255, 255}
		}
		br.read(&tc.U, "texcoord u")
		br.read(&tc.V, "texcoord v")
	}

	node.Faces = make([]RSMFace, br.count(rsmMaxElements, "face"))
	for i := range node.Faces {
		face := &node.Faces[i]
		var padding uint16
		br.read(&face.VertexIDs, "face vertex ids")
		br.read(&face.TexCoordIDs, "face texcoord ids")
		br.read(&face.TextureID, "face texture id")
		br.read(&padding, "face padding")
		br.read(&face.TwoSide, "face two side")
		if version.AtLeast(1, 2) {
			br.read(&face.SmoothGroup, "face smooth group")
		}
	}

	// Animation keys are skipped: position keys (v < 1.5) are frame + vec3,
	// rotation keys frame + quaternion, scale keys (v >= 1.5) frame + vec3.
	if !version.AtLeast(1, 5) {
		br.skip(int64(br.count(rsmMaxKeys, "position key"))*16, "position keys")
	}
	br.skip(int64(br.count(rsmMaxKeys, "rotation key"))*20, "rotation keys")
	if version.AtLeast(1, 5) {
		br.skip(int64(br.count(rsmMaxKeys, "scale key"))*16, "scale keys")
	}

	return br.err
}

// ParseRSMFile parses an RSM file from disk.
func ParseRSMFile(path string) (*RSM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	return ParseRSM(data)
}

// GetNodeByName returns a node by its name, or nil if not found.
func (rsm *RSM) GetNodeByName(name string) *RSMNode {
	for i := range rsm.Nodes {
		if rsm.Nodes[i].Name == name {
			return &rsm.Nodes[i]
		}
	}
	return nil
}

// GetRootNode returns the root node, falling back to the first node for
// files whose root name does not match any node.
func (rsm *RSM) GetRootNode() *RSMNode {
	if node := rsm.GetNodeByName(rsm.RootNode); node != nil {
		return node
	}
	if len(rsm.Nodes) > 0 {
		return &rsm.Nodes[0]
	}
	return nil
}

// GetTotalVertexCount returns the total number of vertices across all nodes.
func (rsm *RSM) GetTotalVertexCount() int {
	total := 0
	for _, node := range rsm.Nodes {
		total += len(node.Vertices)
	}
	return total
}

// GetTotalFaceCount returns the total number of faces across all nodes.
func (rsm *RSM) GetTotalFaceCount() int {
	total := 0
	for _, node := range rsm.Nodes {
		total += len(node.Faces)
	}
	return total
}
