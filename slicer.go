// Package slicer converts implicit-surface solid models into perimeter
// toolpaths for 3D printing. The solid is sliced into horizontal
// layers; within each layer nested perimeter contours are meshed,
// reconstructed as polylines and converted to volumetrically accounted
// extrusion paths.
package slicer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/soypat/slicer/expr"
	"github.com/soypat/slicer/gcode"
	"github.com/soypat/slicer/mesh"
)

// Slicer owns the per-run configuration and model and drives the
// layer × perimeter pipeline. The model expression is read-only for
// the run's duration; units of work share no other state.
type Slicer struct {
	cfg       Config
	model     expr.Expr
	mesher    mesh.Mesher
	diag      Diagnostics
	log       *slog.Logger
	workers   int
	keepGoing bool
}

// Option configures a Slicer.
type Option func(*Slicer)

// WithMesher replaces the default octree mesher.
func WithMesher(m mesh.Mesher) Option {
	return func(s *Slicer) { s.mesher = m }
}

// WithDiagnostics installs a diagnostics sink.
func WithDiagnostics(d Diagnostics) Option {
	return func(s *Slicer) { s.diag = d }
}

// WithLogger installs a logger for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Slicer) { s.log = l }
}

// WithWorkers processes up to n (layer, perimeter) units concurrently.
// Output ordering is unaffected: paths are merged in layer then
// perimeter then discovery order.
func WithWorkers(n int) Option {
	return func(s *Slicer) { s.workers = n }
}

// KeepGoing skips units whose meshing fails, recording a warning,
// instead of aborting the run.
func KeepGoing() Option {
	return func(s *Slicer) { s.keepGoing = true }
}

// New validates the configuration and returns a Slicer for the model.
func New(model expr.Expr, cfg Config, opts ...Option) (*Slicer, error) {
	if model == nil {
		return nil, errors.New("nil model expression")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Slicer{
		cfg:     cfg,
		model:   model,
		mesher:  mesh.OctreeMesher{},
		diag:    nopDiagnostics{},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// unit is one (layer, perimeter) work item.
type unit struct {
	layer     Layer
	perimeter int
}

// Slice runs the pipeline and returns the extrusion paths ordered by
// layer (ascending height), then perimeter (outermost first), then
// discovery order during contour traversal.
func (s *Slicer) Slice() ([]*ExtrusionPath, error) {
	layers := planLayers(s.cfg.Bounds.Min.Z, s.cfg.Bounds.Max.Z, s.cfg.LayerHeight)
	bounds := meshBounds(s.cfg)
	s.diag.Settings(meshDepth, bounds)
	s.log.Info("slicing", "layers", len(layers), "perimeters", s.cfg.Perimeters)

	var units []unit
	for _, layer := range layers {
		if layer.Kind != LayerStandard {
			continue
		}
		for p := s.cfg.Perimeters - 1; p >= 0; p-- {
			units = append(units, unit{layer: layer, perimeter: p})
		}
	}
	results := make([][]*ExtrusionPath, len(units))
	var err error
	if s.workers > 1 {
		err = s.processConcurrent(units, bounds, results)
	} else {
		for i, u := range units {
			if err = s.process(u, bounds, &results[i]); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	var paths []*ExtrusionPath
	for _, r := range results {
		paths = append(paths, r...)
	}
	return paths, nil
}

// process runs one unit: build the offset cross-section expression,
// mesh it, extract contours.
func (s *Slicer) process(u unit, bounds mesh.Bounds, out *[]*ExtrusionPath) error {
	offset := perimeterOffset(s.cfg, u.perimeter)
	e := perimeterExpression(s.model, s.cfg, u.layer, offset)
	s.diag.Expression(u.layer.Z, u.perimeter, e)
	m, err := s.mesher.Mesh(e, meshDepth, bounds)
	if err != nil {
		err = fmt.Errorf("mesh layer z=%g perimeter %d: %w", u.layer.Z, u.perimeter, err)
		if s.keepGoing {
			s.log.Warn("skipping unit", "err", err)
			return nil
		}
		return err
	}
	s.diag.Mesh(u.layer.Z, u.perimeter, m)
	paths := extractContours(m,
		s.cfg.ExtrusionWidth(), s.cfg.LayerHeight,
		u.layer.Z+s.cfg.LayerHeight, s.cfg.FilamentArea())
	s.diag.Paths(u.layer.Z, u.perimeter, paths)
	s.log.Debug("unit sliced", "z", u.layer.Z, "perimeter", u.perimeter,
		"triangles", len(m.Triangles), "paths", len(paths))
	*out = paths
	return nil
}

// processConcurrent fans units out over the worker pool. Results land
// in their unit's slot so the merged order matches sequential runs.
func (s *Slicer) processConcurrent(units []unit, bounds mesh.Bounds, results [][]*ExtrusionPath) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, s.workers)
	for i := range units {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			mu.Lock()
			abort := firstErr != nil
			mu.Unlock()
			if abort {
				return
			}
			if err := s.process(units[i], bounds, &results[i]); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	return firstErr
}

// Emit serializes paths to w as motion commands in order.
func Emit(w io.Writer, paths []*ExtrusionPath) error {
	g := gcode.NewWriter(w)
	for _, p := range paths {
		p.emit(g)
	}
	return g.Flush()
}
