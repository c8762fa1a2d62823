package importer

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/dxs-export/pkg/math"
	"github.com/Faultbox/dxs-export/pkg/mesh"
)

const (
	attrPosition = "POSITION"
	attrTexCoord = "TEXCOORD_0"
)

// glTF errors.
var (
	ErrMeshIndex     = errors.New("glTF mesh index out of range")
	ErrPrimitiveMode = errors.New("only triangle primitives are supported")
	ErrVertexIndex   = errors.New("index references a vertex outside its primitive")
)

func loadGLTF(path string, data []byte) (*gltf.Document, error) {
	if data == nil {
		return gltf.Open(path)
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GLTFMesh converts mesh index of doc into an in-memory source. Triangle
// primitives are concatenated, each offsetting its vertex indices past the
// previous ones. UVs come from TEXCOORD_0 per referenced vertex; if any
// primitive lacks TEXCOORD_0 the result has no UV layer.
func GLTFMesh(doc *gltf.Document, index int) (*mesh.Memory, error) {
	if index < 0 || index >= len(doc.Meshes) {
		return nil, errors.Wrapf(ErrMeshIndex, "mesh %d of %d", index, len(doc.Meshes))
	}
	m := doc.Meshes[index]

	out := &mesh.Memory{MeshName: m.Name}
	var faceUVs [][]math.Vec2
	hasUVs := true

	for i, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return nil, errors.Wrapf(ErrPrimitiveMode, "primitive %d has mode %d", i, prim.Mode)
		}

		posIdx, ok := prim.Attributes[attrPosition]
		if !ok {
			return nil, errors.Errorf("primitive %d: no %s attribute", i, attrPosition)
		}
		acr, err := accessor(doc, posIdx)
		if err != nil {
			return nil, errors.Wrapf(err, "primitive %d positions", i)
		}
		positions, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "primitive %d positions", i)
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[attrTexCoord]; ok {
			acr, err := accessor(doc, uvIdx)
			if err == nil {
				uvs, err = modeler.ReadTextureCoord(doc, acr, nil)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "primitive %d texture coordinates", i)
			}
		} else {
			hasUVs = false
		}

		indices, err := primitiveIndices(doc, prim, len(positions))
		if err != nil {
			return nil, errors.Wrapf(err, "primitive %d indices", i)
		}
		if len(indices)%3 != 0 {
			return nil, errors.Errorf("primitive %d: %d indices is not a triangle list", i, len(indices))
		}

		material := 0
		if prim.Material != nil {
			material = int(*prim.Material)
		}

		base := len(out.Positions)
		for _, p := range positions {
			out.Positions = append(out.Positions, math.Vec3From(p))
		}

		for t := 0; t < len(indices); t += 3 {
			corners := make([]int, 3)
			cornerUVs := make([]math.Vec2, 3)
			for j := range 3 {
				v := int(indices[t+j])
				if v >= len(positions) {
					return nil, errors.Wrapf(ErrVertexIndex, "primitive %d index %d -> vertex %d of %d", i, t+j, v, len(positions))
				}
				corners[j] = base + v
				if v < len(uvs) {
					cornerUVs[j] = math.Vec2{X: uvs[v][0], Y: uvs[v][1]}
				}
			}
			out.Faces = append(out.Faces, mesh.MemoryFace{Material: material, Corners: corners})
			faceUVs = append(faceUVs, cornerUVs)
		}
	}

	out.UVs = faceUVs
	out.NoUVLayer = !hasUVs
	return out, nil
}

func primitiveIndices(doc *gltf.Document, prim *gltf.Primitive, vertexCount int) ([]uint32, error) {
	if prim.Indices == nil {
		indices := make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return indices, nil
	}
	acr, err := accessor(doc, *prim.Indices)
	if err != nil {
		return nil, err
	}
	return modeler.ReadIndices(doc, acr, nil)
}

func accessor(doc *gltf.Document, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}
