// Package importer opens model files from disk or from GRF archives and
// exposes them as mesh sources.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/dxs-export/internal/assets"
	"github.com/Faultbox/dxs-export/pkg/formats"
	"github.com/Faultbox/dxs-export/pkg/mesh"
)

// ErrUnsupportedFormat is returned for inputs whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Options selects what to read from an input.
type Options struct {
	Archives []string // GRF archives to read path from, lowest priority first; empty reads from disk
	Node     string   // RSM node name; empty selects the root node
	Mesh     int      // glTF mesh index
	FlipV    bool     // mirror V texture coordinates
}

// Open loads path and returns its mesh view.
func Open(path string, opts Options) (mesh.Source, error) {
	data, err := readInput(path, opts.Archives)
	if err != nil {
		return nil, err
	}

	src, err := decode(path, data, opts)
	if err != nil {
		return nil, err
	}
	if opts.FlipV {
		src = mesh.FlipV(src)
	}
	return src, nil
}

// Formats lists the extensions Open understands.
func Formats() []string {
	return []string{".rsm", ".gnd", ".gltf", ".glb"}
}

func readInput(path string, archives []string) ([]byte, error) {
	if len(archives) == 0 {
		return nil, nil
	}

	m, err := assets.Open(archives...)
	if err != nil {
		return nil, errors.Wrap(err, "opening archives")
	}
	defer m.Close()

	data, err := m.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

// decode parses data, or the file at path when data is nil.
func decode(path string, data []byte, opts Options) (mesh.Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(strings.ReplaceAll(path, "\\", "/")), filepath.Ext(path))

	switch ext {
	case ".rsm":
		var model *formats.RSM
		var err error
		if data != nil {
			model, err = formats.ParseRSM(data)
		} else {
			model, err = formats.ParseRSMFile(path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "loading model %s", path)
		}
		src, err := model.MeshSource(opts.Node)
		if err != nil {
			return nil, errors.Wrapf(err, "selecting node in %s", path)
		}
		return src, nil

	case ".gnd":
		var ground *formats.GND
		var err error
		if data != nil {
			ground, err = formats.ParseGND(data)
		} else {
			ground, err = formats.ParseGNDFile(path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "loading ground %s", path)
		}
		return ground.MeshSource(name), nil

	case ".gltf", ".glb":
		doc, err := loadGLTF(path, data)
		if err != nil {
			return nil, errors.Wrapf(err, "loading glTF %s", path)
		}
		src, err := GLTFMesh(doc, opts.Mesh)
		if err != nil {
			return nil, errors.Wrapf(err, "converting %s", path)
		}
		if src.MeshName == "" {
			src.MeshName = name
		}
		return src, nil
	}

	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
}
