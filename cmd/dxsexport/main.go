// dxsexport converts Ragnarok Online models and glTF meshes into DeleD
// scene documents (.dxs) for the Artemis engine.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/dxs-export/internal/assets"
	"github.com/Faultbox/dxs-export/internal/config"
	"github.com/Faultbox/dxs-export/internal/export"
	"github.com/Faultbox/dxs-export/internal/importer"
	"github.com/Faultbox/dxs-export/internal/logger"
	"github.com/Faultbox/dxs-export/pkg/formats"
	"github.com/Faultbox/dxs-export/pkg/math"
	"github.com/Faultbox/dxs-export/pkg/mesh"
)

var errUsage = errors.New("usage")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	logger.Sync()

	switch {
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		printUsage(os.Stderr)
		os.Exit(1)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command. Results go to out, diagnostics to errOut.
func run(args []string, out, errOut io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	command, args := args[0], args[1:]
	switch command {
	case "export", "x":
		return cmdExport(args, out)
	case "info":
		return cmdInfo(args, out)
	case "list", "ls":
		return cmdList(args, out, errOut)
	case "config":
		return cmdConfig(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `dxsexport - export meshes as DeleD scenes

Usage:
  dxsexport <command> [options]

Commands:
  export [flags] <input> <output[.dxs]>  Export a mesh to a scene file
  info [flags] <input>                   Show mesh statistics
  list <file.grf>... [pattern]           List exportable files in archives
  config [-user] [path]                  Write the effective configuration

Inputs:
  .rsm, .gnd, .gltf, .glb files, or archive entries with -grf

Examples:
  dxsexport export model.rsm model.dxs
  dxsexport export -grf data.grf -node door data/model/prontera/door.rsm door
  dxsexport export -flipv crate.glb crate.dxs
  dxsexport list data.grf rdata.grf "*.rsm"`)
}

// inputFlags are shared by the commands that read a mesh.
type inputFlags struct {
	cfg      config.Flags
	archives []string
	node     string
	mesh     int
}

func (f *inputFlags) register(fs *flag.FlagSet) {
	f.cfg.Register(fs)
	fs.Func("grf", "Read the input from this GRF archive (repeatable, later archives win)", func(s string) error {
		f.archives = append(f.archives, s)
		return nil
	})
	fs.StringVar(&f.node, "node", "", "RSM node to export (default root node)")
	fs.IntVar(&f.mesh, "mesh", 0, "glTF mesh index")
}

// setup loads the configuration, starts logging and opens the input.
func (f *inputFlags) setup(input string) (*config.Config, mesh.Source, error) {
	cfg, err := config.Load(&f.cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	src, err := importer.Open(input, importer.Options{
		Archives: f.archives,
		Node:     f.node,
		Mesh:     f.mesh,
		FlipV:    cfg.Export.FlipV,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Named("cli").Debug("input opened",
		zap.String("input", input),
		zap.Strings("archives", f.archives),
	)
	return cfg, src, nil
}

func cmdExport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var flags inputFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: export needs <input> <output>", errUsage)
	}

	cfg, src, err := flags.setup(fs.Arg(0))
	if err != nil {
		return err
	}

	res := export.New(cfg, logger.Named("export")).Export(fs.Arg(1), src)
	if res.Err != nil {
		return res.Err
	}

	fmt.Fprintf(out, "Exported: %s (%d vertices, %d faces, %d bytes)\n",
		res.Path, res.Vertices, res.Faces, res.Bytes)
	return nil
}

func cmdInfo(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	var flags inputFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: info needs <input>", errUsage)
	}

	_, src, err := flags.setup(fs.Arg(0))
	if err != nil {
		return err
	}

	printInfo(out, fs.Arg(0), src)
	return nil
}

func printInfo(w io.Writer, input string, src mesh.Source) {
	corners := 0
	materials := make(map[int]int)
	for i := range src.FaceCount() {
		face := src.FaceAt(i)
		corners += face.CornerCount()
		materials[max(face.MaterialIndex(), 0)]++
	}

	fmt.Fprintf(w, "Input:     %s\n", input)
	fmt.Fprintf(w, "Name:      %s\n", mesh.NameOf(src, "(unnamed)"))
	fmt.Fprintf(w, "Vertices:  %d\n", src.VertexCount())
	fmt.Fprintf(w, "Faces:     %d\n", src.FaceCount())
	fmt.Fprintf(w, "Corners:   %d\n", corners)

	_, hasUVs := src.ActiveUVLayer()
	fmt.Fprintf(w, "UV layer:  %t\n", hasUVs)

	if src.VertexCount() > 0 {
		_, lo := src.VertexAt(0)
		hi := lo
		for i := 1; i < src.VertexCount(); i++ {
			_, p := src.VertexAt(i)
			lo, hi = lo.Min(p), hi.Max(p)
		}
		fmt.Fprintf(w, "Bounds:    %s .. %s\n", formatVec(lo), formatVec(hi))
		fmt.Fprintf(w, "Size:      %s\n", formatVec(hi.Sub(lo)))
	}

	printFormat(w, mesh.Unwrap(src))

	if len(materials) > 0 {
		ids := make([]int, 0, len(materials))
		for id := range materials {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		fmt.Fprintln(w, "Faces by material:")
		for _, id := range ids {
			fmt.Fprintf(w, "  %-4d %d\n", id, materials[id])
		}
	}
}

// printFormat prints what the source file says about itself.
func printFormat(w io.Writer, src mesh.Source) {
	switch s := src.(type) {
	case *formats.RSMMesh:
		rsm := s.Model()
		fmt.Fprintf(w, "Format:    RSM %s\n", rsm.Version)
		fmt.Fprintf(w, "Shading:   %s\n", rsm.Shading)
		fmt.Fprintf(w, "Alpha:     %.2f\n", rsm.Alpha)
		fmt.Fprintf(w, "Nodes:     %d (%d vertices, %d faces in total)\n",
			len(rsm.Nodes), rsm.GetTotalVertexCount(), rsm.GetTotalFaceCount())
		if parent := s.Node().Parent; parent != "" {
			fmt.Fprintf(w, "Parent:    %s\n", parent)
		}
		printTextures(w, rsm.Textures)
	case *formats.GNDMesh:
		gnd := s.Ground()
		fmt.Fprintf(w, "Format:    GND %s\n", gnd.Version)
		fmt.Fprintf(w, "Grid:      %dx%d tiles, zoom %g\n", gnd.Width, gnd.Height, gnd.Zoom)
		fmt.Fprintf(w, "Surfaces:  %d\n", len(gnd.Surfaces))
		printTextures(w, gnd.Textures)
	}
}

func printTextures(w io.Writer, textures []string) {
	if len(textures) == 0 {
		return
	}
	fmt.Fprintln(w, "Textures:")
	for i, tex := range textures {
		fmt.Fprintf(w, "  %-4d %s\n", i, tex)
	}
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

func cmdList(args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	archives := fs.Args()
	pattern := ""
	if n := len(archives); n > 1 && !strings.EqualFold(filepath.Ext(archives[n-1]), ".grf") {
		archives, pattern = archives[:n-1], strings.ToLower(archives[n-1])
	}
	if len(archives) < 1 {
		return fmt.Errorf("%w: list needs <file.grf>", errUsage)
	}

	m, err := assets.Open(archives...)
	if err != nil {
		return err
	}
	defer m.Close()

	count := 0
	for _, f := range m.List() {
		if !slices.Contains(importer.Formats(), filepath.Ext(f)) {
			continue
		}
		if pattern != "" {
			matched, _ := filepath.Match(pattern, filepath.Base(f))
			if !matched && !strings.Contains(f, pattern) {
				continue
			}
		}
		fmt.Fprintln(out, f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if count == 0 {
		fmt.Fprintln(errOut, "No exportable files found")
	}
	return nil
}

func cmdConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	user := fs.Bool("user", false, "Save to the user config directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return err
	}

	switch {
	case *user:
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", config.UserConfigPath())
	case fs.NArg() > 0:
		if err := cfg.SaveTo(fs.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", fs.Arg(0))
	default:
		return cfg.Encode(out)
	}
	return nil
}
