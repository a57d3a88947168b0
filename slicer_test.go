package slicer

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/slicer/expr"
	"github.com/soypat/slicer/internal/d3"
	"github.com/soypat/slicer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// radialField is a euclidean distance field of a sphere, used as a
// well-behaved test model.
type radialField struct {
	radius float64
}

func (f radialField) Evaluate(p r3.Vec) float64 {
	return r3.Norm(p) - f.radius
}

func defaultConfig() Config {
	return Config{
		NozzleDiameter:       0.40,
		LayerHeight:          0.20,
		FilamentDiameter:     1.75,
		ExtrusionWidthScalar: 1.05,
		Perimeters:           1,
		Bounds: r3.Box{
			Min: r3.Vec{X: -5, Y: -5, Z: 0},
			Max: r3.Vec{X: 5, Y: 5, Z: 1},
		},
	}
}

func TestPlanLayers(t *testing.T) {
	layers := planLayers(0, 5, 0.2)
	if len(layers) != 25 {
		t.Fatalf("got %d layers, want 25", len(layers))
	}
	for i, l := range layers {
		want := 0.2 * float64(i)
		if math.Abs(l.Z-want) > 1e-12 {
			t.Errorf("layer %d at z=%g, want %g", i, l.Z, want)
		}
		if l.Kind != LayerStandard {
			t.Errorf("layer %d kind %d, want standard", i, l.Kind)
		}
	}
}

// The planner computes z = range*i/count - zMin, which for a nonzero
// minimum starts below it. The behavior is pinned here on purpose; see
// DESIGN.md.
func TestPlanLayersNonZeroMin(t *testing.T) {
	layers := planLayers(1, 3, 0.5)
	want := []float64{-1, -0.5, 0, 0.5}
	if len(layers) != len(want) {
		t.Fatalf("got %d layers, want %d", len(layers), len(want))
	}
	for i, l := range layers {
		if math.Abs(l.Z-want[i]) > 1e-12 {
			t.Errorf("layer %d at z=%g, want %g", i, l.Z, want[i])
		}
	}
}

func TestConfigDerived(t *testing.T) {
	c := defaultConfig()
	for _, tc := range []struct {
		name      string
		got, want float64
	}{
		{"extrusion width", c.ExtrusionWidth(), 0.42},
		{"path spacing", c.PathSpacing(), 0.377080},
		{"filament area", c.FilamentArea(), 2.405282},
		{"offset p=0", perimeterOffset(c, 0), 0.188540},
		{"offset p=1", perimeterOffset(c, 1), 0.565620},
	} {
		if math.Abs(tc.got-tc.want) > 1e-6 {
			t.Errorf("%s: got %g, want %g", tc.name, tc.got, tc.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	mangle := []struct {
		name string
		fn   func(*Config)
	}{
		{"zero layer height", func(c *Config) { c.LayerHeight = 0 }},
		{"NaN layer height", func(c *Config) { c.LayerHeight = math.NaN() }},
		{"negative nozzle", func(c *Config) { c.NozzleDiameter = -1 }},
		{"zero filament", func(c *Config) { c.FilamentDiameter = 0 }},
		{"zero width scalar", func(c *Config) { c.ExtrusionWidthScalar = 0 }},
		{"zero perimeters", func(c *Config) { c.Perimeters = 0 }},
		{"inverted X", func(c *Config) { c.Bounds.Max.X = c.Bounds.Min.X }},
		{"inverted Y", func(c *Config) { c.Bounds.Min.Y = 10 }},
		{"inverted Z", func(c *Config) { c.Bounds.Max.Z = -1 }},
	}
	for _, tc := range mangle {
		c := defaultConfig()
		tc.fn(&c)
		_, err := New(expr.Const(1), c)
		if !errors.Is(err, ErrConfig) {
			t.Errorf("%s: got error %v, want ErrConfig", tc.name, err)
		}
	}
	if _, err := New(expr.Const(1), defaultConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestNewNilModel(t *testing.T) {
	if _, err := New(nil, defaultConfig()); err == nil {
		t.Error("nil model accepted")
	}
}

func TestMeshBounds(t *testing.T) {
	c := defaultConfig()
	c.Bounds.Min = r3.Vec{X: -1, Y: -4, Z: 0}
	c.Bounds.Max = r3.Vec{X: 3, Y: 2, Z: 5}
	b := meshBounds(c)
	if b.Center.X != 1 || b.Center.Y != -1 || b.Center.Z != 0 {
		t.Errorf("bounds center %v, want (1, -1, 0)", b.Center)
	}
	if math.Abs(b.Size-6) > 1e-6 || b.Size <= 6 {
		t.Errorf("bounds size %g, want slightly above 6", b.Size)
	}
}

func TestPerimeterExpression(t *testing.T) {
	c := defaultConfig()
	model := radialField{radius: 2}
	e := perimeterExpression(model, c, Layer{Z: 0}, 0)
	// Inside the die the value is the cross-section field of the sphere
	// at the layer mid-height.
	got := e.Evaluate(r3.Vec{X: 1.9, Y: 0, Z: 1})
	want := math.Sqrt(1.9*1.9+0.1*0.1) - 2
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("inside die: got %g, want %g", got, want)
	}
	// Outside the die the die dominates.
	if got := e.Evaluate(r3.Vec{X: 6, Y: 0, Z: 1}); got <= 0 {
		t.Errorf("outside die: got %g, want positive", got)
	}
	// A positive offset grows the field value.
	eo := perimeterExpression(model, c, Layer{Z: 0}, 0.25)
	if got := eo.Evaluate(r3.Vec{X: 1.9, Y: 0, Z: 1}); math.Abs(got-(want+0.25)) > 1e-12 {
		t.Errorf("offset: got %g, want %g", got, want+0.25)
	}
}

func TestSliceSphere(t *testing.T) {
	if testing.Short() {
		t.Skip("meshes several full-depth layers")
	}
	cfg := defaultConfig()
	s, err := New(radialField{radius: 2}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	paths, err := s.Slice()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no paths extracted")
	}
	offset := perimeterOffset(cfg, 0)
	box := d3.Box(cfg.Bounds)
	for _, p := range paths {
		points := p.Points()
		if len(points) < 8 {
			t.Fatalf("path at z=%g has only %d points", p.Z, len(points))
		}
		if points[0] != points[len(points)-1] {
			t.Errorf("path at z=%g not closed: %v != %v", p.Z, points[0], points[len(points)-1])
		}
		// Path z is the printing height, one layer above the planning
		// height; the contour was cut at the layer mid-height.
		midZ := p.Z - cfg.LayerHeight/2
		wantR := math.Sqrt(4-midZ*midZ) - offset
		for _, pt := range points {
			r := math.Hypot(pt.X, pt.Y)
			if math.Abs(r-wantR) > 0.08 {
				t.Fatalf("path at z=%g: point radius %g, want %g", p.Z, r, wantR)
			}
			if !box.Contains(r3.Vec{X: pt.X, Y: pt.Y, Z: cfg.Bounds.Min.Z}) {
				t.Fatalf("path at z=%g: point %v escapes print bounds", p.Z, pt)
			}
		}
	}
}

func TestSliceParallelMatchesSequential(t *testing.T) {
	if testing.Short() {
		t.Skip("meshes several full-depth layers")
	}
	cfg := defaultConfig()
	cfg.Perimeters = 2
	model := radialField{radius: 2}
	seq, err := New(model, cfg)
	if err != nil {
		t.Fatal(err)
	}
	par, err := New(model, cfg, WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	a, err := seq.Slice()
	if err != nil {
		t.Fatal(err)
	}
	b, err := par.Slice()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("sequential %d paths, parallel %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Z != b[i].Z || !reflect.DeepEqual(a[i].points, b[i].points) {
			t.Fatalf("path %d differs between sequential and parallel runs", i)
		}
	}
}

func TestSliceEmptyModel(t *testing.T) {
	// A positive constant field has no surface anywhere.
	s, err := New(expr.Const(1), defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	paths, err := s.Slice()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Fatalf("got %d paths from empty model", len(paths))
	}
}

type failMesher struct{}

func (failMesher) Mesh(expr.Expr, int, mesh.Bounds) (*mesh.Mesh, error) {
	return nil, errors.New("synthetic failure")
}

func TestSliceMeshError(t *testing.T) {
	s, err := New(expr.Const(1), defaultConfig(), WithMesher(failMesher{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Slice(); err == nil {
		t.Fatal("mesher failure not reported")
	} else if !strings.Contains(err.Error(), "mesh layer") {
		t.Errorf("error %q does not locate the failing unit", err)
	}
}

func TestSliceKeepGoing(t *testing.T) {
	s, err := New(expr.Const(1), defaultConfig(), WithMesher(failMesher{}), KeepGoing())
	if err != nil {
		t.Fatal(err)
	}
	paths, err := s.Slice()
	if err != nil {
		t.Fatalf("hardened run aborted: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("got %d paths from failing mesher", len(paths))
	}
}

// recordDiagnostics counts sink invocations.
type recordDiagnostics struct {
	settings, expressions, meshes, paths int
}

func (d *recordDiagnostics) Settings(int, mesh.Bounds)            { d.settings++ }
func (d *recordDiagnostics) Expression(float64, int, expr.Expr)   { d.expressions++ }
func (d *recordDiagnostics) Mesh(float64, int, *mesh.Mesh)        { d.meshes++ }
func (d *recordDiagnostics) Paths(float64, int, []*ExtrusionPath) { d.paths++ }

func TestDiagnosticsSink(t *testing.T) {
	var rec recordDiagnostics
	s, err := New(expr.Const(1), defaultConfig(), WithDiagnostics(&rec))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Slice(); err != nil {
		t.Fatal(err)
	}
	const units = 5 // 5 layers, 1 perimeter
	if rec.settings != 1 {
		t.Errorf("settings called %d times, want 1", rec.settings)
	}
	if rec.expressions != units || rec.meshes != units || rec.paths != units {
		t.Errorf("per-unit sinks called %d/%d/%d times, want %d each",
			rec.expressions, rec.meshes, rec.paths, units)
	}
}

func TestEmitEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Emit(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty emit produced %q", buf.String())
	}
}
