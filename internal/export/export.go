// Package export runs one mesh-to-scene export: extract a snapshot, write the
// document, and report what happened.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/dxs-export/internal/config"
	"github.com/Faultbox/dxs-export/pkg/dxs"
	"github.com/Faultbox/dxs-export/pkg/mesh"
)

// State is the lifecycle position of an export.
type State int

// Export states.
const (
	Idle State = iota
	Writing
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Writing:
		return "writing"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result reports the outcome of one Export call.
type Result struct {
	State    State
	Path     string
	Vertices int
	Faces    int
	Corners  int
	Bytes    int64
	Err      error
}

// Exporter writes mesh sources as scene documents. It is not safe for
// concurrent use.
type Exporter struct {
	cfg   config.ExportConfig
	cat   dxs.Catalog
	log   *zap.Logger
	state State
}

// New returns an exporter. A nil cfg uses defaults; a nil log discards output.
func New(cfg *config.Config, log *zap.Logger) *Exporter {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		cfg: cfg.Export,
		cat: cfg.Materials,
		log: log,
	}
}

// State returns the state of the most recent export.
func (e *Exporter) State() State {
	return e.state
}

// EnsureExtension forces path to end in the scene extension. A different
// extension is replaced; a matching one in any case is kept.
func EnsureExtension(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, dxs.Extension) {
		return path
	}
	return strings.TrimSuffix(path, ext) + dxs.Extension
}

// Export writes src to path. The mesh is extracted before the file is
// created, so an unusable source leaves nothing on disk. A write failure
// can leave a partial file behind.
func (e *Exporter) Export(path string, src mesh.Source) Result {
	start := time.Now()
	res := Result{Path: EnsureExtension(path)}
	log := e.log.With(zap.String("path", res.Path))

	fail := func(err error) Result {
		e.state = Failed
		res.State = Failed
		res.Err = err
		log.Error("export failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return res
	}

	e.state = Writing
	log.Debug("export started")

	m, err := e.extract(src)
	if err != nil {
		return fail(err)
	}
	res.Vertices = len(m.Vertices)
	res.Faces = len(m.Faces)
	res.Corners = m.CornerCount()

	n, err := e.writeFile(res.Path, m)
	res.Bytes = n
	if err != nil {
		return fail(err)
	}

	e.state = Finished
	res.State = Finished
	log.Info("export finished",
		zap.String("primitive", e.primitiveName(m)),
		zap.Int("vertices", res.Vertices),
		zap.Int("faces", res.Faces),
		zap.Int("corners", res.Corners),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res
}

// WriteTo writes the scene for src to w and returns the bytes written.
func (e *Exporter) WriteTo(w io.Writer, src mesh.Source) (int64, error) {
	m, err := e.extract(src)
	if err != nil {
		return 0, err
	}
	return e.write(w, m)
}

func (e *Exporter) extract(src mesh.Source) (*mesh.Mesh, error) {
	m, err := mesh.Extract(src)
	if err != nil {
		return nil, err
	}
	e.log.Debug("mesh extracted",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("faces", len(m.Faces)),
	)
	return m, nil
}

func (e *Exporter) writeFile(path string, m *mesh.Mesh) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	return e.writeAndClose(f, path, m)
}

// writeAndClose writes m through a buffer to wc and closes it. Flush and close
// failures are sink write failures like any other.
func (e *Exporter) writeAndClose(wc io.WriteCloser, path string, m *mesh.Mesh) (n int64, err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %w", dxs.ErrSinkWrite, path, cerr)
		}
	}()

	bw := bufio.NewWriter(wc)
	n, err = e.write(bw, m)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("%w: %w", dxs.ErrSinkWrite, err)
	}
	return n, nil
}

func (e *Exporter) write(w io.Writer, m *mesh.Mesh) (int64, error) {
	prim := dxs.NewPrimitive(1, m)
	prim.Name = e.primitiveName(m)
	if e.cfg.PrimitiveType != "" {
		prim.Type = e.cfg.PrimitiveType
	}

	scene := &dxs.Scene{
		Materials:  e.cat,
		Primitives: []dxs.Primitive{prim},
		Skeletons:  e.cfg.IncludeSkeletons,
		Lights:     e.cfg.IncludeLights,
	}
	if e.cfg.IncludeSettings {
		settings := dxs.DefaultSettings()
		scene.Settings = &settings
	}

	dw := dxs.NewWriter(w)
	err := dw.WriteScene(scene)
	return dw.Written(), err
}

func (e *Exporter) primitiveName(m *mesh.Mesh) string {
	switch {
	case e.cfg.OverrideName && e.cfg.PrimitiveName != "":
		return e.cfg.PrimitiveName
	case m.Name != "":
		return m.Name
	case e.cfg.PrimitiveName != "":
		return e.cfg.PrimitiveName
	}
	return dxs.DefaultPrimitiveName
}
