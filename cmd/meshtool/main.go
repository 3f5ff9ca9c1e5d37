// meshtool is a CLI utility for checking, repairing and hulling triangle meshes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/simplemesh/internal/config"
	"github.com/Faultbox/simplemesh/internal/logger"
	"github.com/Faultbox/simplemesh/pkg/formats"
	"github.com/Faultbox/simplemesh/pkg/math"
	"github.com/Faultbox/simplemesh/pkg/mesh"
)

var (
	errUsage      = errors.New("usage")
	errHullFailed = errors.New("hull could not be built")
	errTooFew     = errors.New("not enough points for a hull")
)

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// runMain dispatches a command line and returns the process exit code:
// 0 on success, 2 for usage errors and 1 for everything else.
func runMain(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	err := run(args[0], args[1:], stdout)
	if err != nil && !errors.Is(err, errUsage) {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
	}
	logger.Sync()

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "analyze", "check":
		return cmdAnalyze(args, out)
	case "hull":
		return cmdHull(args, out)
	case "convex":
		return cmdConvex(args, out)
	case "info":
		return cmdInfo(args, out)
	case "config":
		return cmdConfig(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshtool - triangle mesh topology checker and convex hull builder

Usage:
  meshtool <command> [options] <file.yaml>

Commands:
  analyze <mesh.yaml>              Report watertightness, winding, bodies and convexity
  hull <points.yaml> [-o out.yaml] Build the convex hull of the document's vertices
  convex <mesh.yaml> [-o out.yaml] Replace a mesh with its convex hull
  info <file.yaml>                 Show vertex, face and bounds information
  config [-save] [-o path]         Print the effective configuration, optionally saving it

Common options:
  -config <path>       Config file (default ./meshtool.yaml or the user config dir)
  -debug               Enable debug logging
  -merge <d>           Vertex merge threshold per axis
  -planar <f>          Convexity epsilon factor
  -zero-area <a>       Degenerate face area
  -hull-tolerance <t>  Quickhull plane tolerance
  -log-file <path>     Also log to a rotating file

Examples:
  meshtool analyze cube.yaml
  meshtool hull -o hull.yaml scan.yaml
  meshtool convex -debug -o fixed.yaml part.yaml`)
}

// setup loads configuration and logging for a command once its flags are
// parsed.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.Logging.LogFile == "" {
		err = logger.Init(cfg.Logging.Level, "")
	} else {
		fileCfg := logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		fileCfg.MaxBackups = cfg.Logging.MaxBackups
		fileCfg.JSON = cfg.Logging.JSON
		err = logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("config loaded",
		zap.String("path", config.ConfigPath()),
		zap.Float64("merge_threshold", cfg.Tolerances.MergeThreshold),
		zap.Float64("zero_area", cfg.Tolerances.ZeroArea),
		zap.Float64("planar", cfg.Tolerances.Planar))
	return cfg, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	config.RegisterFlags(fs)
	return fs
}

func loadDocument(path string) (*formats.MeshDocument, string, error) {
	doc, err := formats.ParseMeshDocumentFile(path)
	if err != nil {
		return nil, "", err
	}
	name := doc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, name, nil
}

func cmdAnalyze(args []string, out io.Writer) error {
	fs := newFlagSet("analyze")
	noMerge := fs.Bool("no-merge", false, "Keep duplicate vertices")
	maxEdges := fs.Int("edges", 10, "List at most N boundary edges (0 = none)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool analyze [options] <mesh.yaml>", errUsage)
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	doc, name, err := loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}

	opts := cfg.MeshOptions(logger.Named("mesh"))
	opts.SkipMerge = *noMerge
	m, err := mesh.FromGeometry(doc.Geometry(), opts)
	if err != nil {
		return err
	}

	logger.Info("analyzed", zap.String("mesh", name), zap.Stringer("result", m.Result()))
	if !m.IsWatertight() {
		logger.Warn("mesh is not watertight",
			zap.String("mesh", name),
			zap.Int("boundary_edges", m.Result().Stats.BoundaryEdges),
			zap.Int("non_manifold_edges", m.Result().Stats.NonManifoldEdges))
	}
	printReport(out, name, m)
	printBoundary(out, m, *maxEdges)
	return nil
}

func cmdHull(args []string, out io.Writer) error {
	fs := newFlagSet("hull")
	output := fs.String("o", "", "Write the hull to this file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool hull [options] <points.yaml>", errUsage)
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	doc, name, err := loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}

	points := doc.Positions()
	if len(points) < cfg.Hull.MinPoints {
		return fmt.Errorf("%w: %d points, need %d", errTooFew, len(points), cfg.Hull.MinPoints)
	}

	hull, ok := mesh.Quickhull(points, cfg.MeshOptions(logger.Named("hull")))
	if !ok {
		return fmt.Errorf("%w from %d points", errHullFailed, len(points))
	}
	logger.Info("hull built",
		zap.String("mesh", name),
		zap.Int("points", len(points)),
		zap.Int("vertices", hull.VertexCount()),
		zap.Int("faces", hull.FaceCount()))

	printReport(out, name+" (hull)", hull)
	return writeOutput(*output, name+"-hull", hull)
}

func cmdConvex(args []string, out io.Writer) error {
	fs := newFlagSet("convex")
	output := fs.String("o", "", "Write the convex mesh to this file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool convex [options] <mesh.yaml>", errUsage)
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	doc, name, err := loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}

	m, err := mesh.FromGeometry(doc.Geometry(), cfg.MeshOptions(logger.Named("mesh")))
	if err != nil {
		return err
	}
	before := m.Result()
	if !m.MakeConvex() {
		return fmt.Errorf("%w for %s", errHullFailed, name)
	}
	logger.Info("made convex",
		zap.String("mesh", name),
		zap.Stringer("before", before),
		zap.Stringer("after", m.Result()))

	printReport(out, name, m)
	return writeOutput(*output, name, m)
}

func cmdInfo(args []string, out io.Writer) error {
	fs := newFlagSet("info")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool info <file.yaml>", errUsage)
	}
	if _, err := setup(); err != nil {
		return err
	}

	doc, name, err := loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	points := doc.Positions()
	b := math.BoundsOf(points)

	kind := "mesh"
	if doc.IsPointCloud() {
		kind = "point cloud"
	}
	fmt.Fprintf(out, "Name:     %s\n", name)
	fmt.Fprintf(out, "Kind:     %s\n", kind)
	fmt.Fprintf(out, "Vertices: %d\n", len(points))
	fmt.Fprintf(out, "Faces:    %d\n", len(doc.Indices)/3)
	fmt.Fprintf(out, "Bounds:   (%g, %g, %g) - (%g, %g, %g)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Fprintf(out, "Diagonal: %.6g\n", b.Diagonal())
	return nil
}

func cmdConfig(args []string, out io.Writer) error {
	fs := newFlagSet("config")
	save := fs.Bool("save", false, "Save to the user config directory")
	output := fs.String("o", "", "Save to this file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	out.Write(data)

	if *save {
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Info("saved config", zap.String("dir", config.ConfigDir()))
	}
	if *output != "" {
		if err := cfg.SaveTo(*output); err != nil {
			return err
		}
		logger.Info("saved config", zap.String("path", *output))
	}
	return nil
}

func printReport(w io.Writer, name string, m *mesh.Mesh) {
	res := m.Result()
	fmt.Fprintf(w, "Mesh:        %s\n", name)
	fmt.Fprintf(w, "Vertices:    %d\n", m.VertexCount())
	fmt.Fprintf(w, "Faces:       %d\n", m.FaceCount())
	fmt.Fprintf(w, "Watertight:  %s\n", yesNo(res.IsWatertight))
	fmt.Fprintf(w, "Convex:      %s\n", yesNo(res.IsConvex))
	fmt.Fprintf(w, "Multibody:   %s\n", yesNo(res.Multibody))
	fmt.Fprintf(w, "Degenerate:  %s\n", yesNo(res.DegenerateMesh))
	fmt.Fprintf(w, "Repairs:     %s\n", res.Repairs)

	s := res.Stats
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stats:")
	fmt.Fprintf(w, "  boundary edges      %d\n", s.BoundaryEdges)
	fmt.Fprintf(w, "  non-manifold edges  %d\n", s.NonManifoldEdges)
	fmt.Fprintf(w, "  degenerate faces    %d\n", s.DegenerateFaces)
	fmt.Fprintf(w, "  components          %d\n", s.Components)
	fmt.Fprintf(w, "  signed volume       %.6g\n", s.SignedVolume)

	tol := m.Tolerances()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tolerances:  merge=%g zero-area=%g planar=%g\n", tol.MergeThreshold, tol.ZeroArea, tol.Planar)
}

func printBoundary(w io.Writer, m *mesh.Mesh, limit int) {
	if limit <= 0 {
		return
	}
	edges := m.BoundaryEdges()
	if len(edges) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Boundary edges (%d):\n", len(edges))
	for i, e := range edges {
		if i == limit {
			fmt.Fprintf(w, "  ... and %d more\n", len(edges)-limit)
			break
		}
		fmt.Fprintf(w, "  %d-%d\n", e.Lo, e.Hi)
	}
}

func writeOutput(path, name string, m *mesh.Mesh) error {
	if path == "" {
		return nil
	}
	if err := formats.NewMeshDocument(name, m).WriteFile(path); err != nil {
		return err
	}
	logger.Info("wrote mesh", zap.String("path", path))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
