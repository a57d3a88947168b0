// Command slicer converts an implicit-surface solid model description
// into perimeter-only G-code.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/soypat/slicer"
	"github.com/soypat/slicer/expr"
	"github.com/soypat/slicer/matter"
	flag "github.com/spf13/pflag"
	"gonum.org/v1/gonum/spatial/r3"
)

func main() {
	var (
		file                 = flag.StringP("file", "f", "", "path to solid model description (JSON)")
		output               = flag.StringP("output", "o", "output.gcode", "output G-code path")
		nozzleDiameter       = flag.Float64P("nozzle-diameter", "n", 0.40, "nozzle diameter")
		layerHeight          = flag.Float64P("layer-height", "l", 0.20, "layer height")
		filamentDiameter     = flag.Float64P("filament-diameter", "d", 1.75, "filament diameter")
		extrusionWidthScalar = flag.Float64P("extrusion-width-scalar", "e", 1.05, "extrusions are this multiplied by the nozzle diameter")
		perimeters           = flag.IntP("perimeters", "p", 1, "number of perimeters")
		xMin                 = flag.Float64("x-min", -5, "X axis minimum")
		xMax                 = flag.Float64("x-max", 5, "X axis maximum")
		yMin                 = flag.Float64("y-min", -5, "Y axis minimum")
		yMax                 = flag.Float64("y-max", 5, "Y axis maximum")
		zMin                 = flag.Float64("z-min", 0, "Z axis minimum")
		zMax                 = flag.Float64("z-max", 5, "Z axis maximum")
		debugDir             = flag.String("debug-dir", "", "write intermediate expressions, meshes and plots to this directory")
		workers              = flag.Int("workers", 1, "number of concurrent slicing workers")
		keepGoing            = flag.Bool("keep-going", false, "skip perimeters whose meshing fails instead of aborting")
		material             = flag.String("material", "", "compensate model for material shrinkage (pla)")
		verbose              = flag.BoolP("verbose", "v", false, "log per-unit progress")
	)
	flag.Parse()
	if err := run(config{
		file:      *file,
		output:    *output,
		debugDir:  *debugDir,
		workers:   *workers,
		keepGoing: *keepGoing,
		material:  *material,
		verbose:   *verbose,
		print: slicer.Config{
			NozzleDiameter:       *nozzleDiameter,
			LayerHeight:          *layerHeight,
			FilamentDiameter:     *filamentDiameter,
			ExtrusionWidthScalar: *extrusionWidthScalar,
			Perimeters:           *perimeters,
			Bounds: r3.Box{
				Min: r3.Vec{X: *xMin, Y: *yMin, Z: *zMin},
				Max: r3.Vec{X: *xMax, Y: *yMax, Z: *zMax},
			},
		},
	}); err != nil {
		fmt.Fprintln(os.Stderr, "slicer:", err)
		os.Exit(1)
	}
}

type config struct {
	file      string
	output    string
	debugDir  string
	workers   int
	keepGoing bool
	material  string
	verbose   bool
	print     slicer.Config
}

func run(c config) error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if c.file == "" {
		return fmt.Errorf("no model file given (see --help)")
	}
	fp, err := os.Open(c.file)
	if err != nil {
		return err
	}
	model, err := expr.Decode(fp)
	fp.Close()
	if err != nil {
		return err
	}
	switch c.material {
	case "":
	case "pla":
		model = matter.PLA.Compensate(model)
	default:
		return fmt.Errorf("unknown material %q", c.material)
	}

	opts := []slicer.Option{slicer.WithLogger(log)}
	if c.debugDir != "" {
		opts = append(opts, slicer.WithDiagnostics(&slicer.DirDiagnostics{
			Dir:      c.debugDir,
			Previews: true,
			Plots:    true,
			Log:      log,
		}))
	}
	if c.workers > 1 {
		opts = append(opts, slicer.WithWorkers(c.workers))
	}
	if c.keepGoing {
		opts = append(opts, slicer.KeepGoing())
	}
	s, err := slicer.New(model, c.print, opts...)
	if err != nil {
		return err
	}
	paths, err := s.Slice()
	if err != nil {
		return err
	}

	out, err := os.Create(c.output)
	if err != nil {
		return err
	}
	if err := slicer.Emit(out, paths); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Info("done", "paths", len(paths), "output", c.output)
	return nil
}
