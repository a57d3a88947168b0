package expr_test

import (
	"testing"

	"github.com/soypat/slicer/expr"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAxesAndConst(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	if got := expr.X().Evaluate(p); got != 1 {
		t.Errorf("X = %g", got)
	}
	if got := expr.Y().Evaluate(p); got != 2 {
		t.Errorf("Y = %g", got)
	}
	if got := expr.Z().Evaluate(p); got != 3 {
		t.Errorf("Z = %g", got)
	}
	if got := expr.Const(-4.5).Evaluate(p); got != -4.5 {
		t.Errorf("Const = %g", got)
	}
}

func TestArithmetic(t *testing.T) {
	p := r3.Vec{X: 3, Y: -2}
	x, y := expr.X(), expr.Y()
	for _, tc := range []struct {
		name string
		e    expr.Expr
		want float64
	}{
		{"add", expr.Add(x, y), 1},
		{"sub", expr.Sub(x, y), 5},
		{"mul", expr.Mul(x, y), -6},
		{"min", expr.Min(x, y), -2},
		{"max", expr.Max(x, y), 3},
		{"abs", expr.Abs(y), 2},
		{"offset", expr.Offset(x, 10), 13},
	} {
		if got := tc.e.Evaluate(p); got != tc.want {
			t.Errorf("%s: got %g, want %g", tc.name, got, tc.want)
		}
	}
}

func TestRemapCollapsesAxis(t *testing.T) {
	// z**2 collapsed to the plane z=3 is constant 9 regardless of the
	// evaluation point's own z.
	zsq := expr.Mul(expr.Z(), expr.Z())
	e := expr.Remap(zsq, expr.X(), expr.Y(), expr.Const(3))
	for _, z := range []float64{-10, 0, 42} {
		if got := e.Evaluate(r3.Vec{Z: z}); got != 9 {
			t.Errorf("at z=%g: got %g, want 9", z, got)
		}
	}
}

func TestTranslate(t *testing.T) {
	e := expr.Translate(expr.X(), r3.Vec{X: 2})
	if got := e.Evaluate(r3.Vec{X: 5}); got != 3 {
		t.Errorf("got %g, want 3", got)
	}
}

func TestScaleUniformKeepsDistance(t *testing.T) {
	// Scaling a distance field keeps it a distance field: the value at
	// distance d outside the scaled surface is d.
	plane := expr.Sub(expr.X(), expr.Const(1)) // surface at x=1
	e := expr.ScaleUniform(plane, 2)           // surface at x=2
	if got := e.Evaluate(r3.Vec{X: 2}); got != 0 {
		t.Errorf("surface: got %g, want 0", got)
	}
	if got := e.Evaluate(r3.Vec{X: 5}); got != 3 {
		t.Errorf("outside: got %g, want 3", got)
	}
}

func TestBoundedBox(t *testing.T) {
	die := expr.BoundedBox(-5, -5, 0, 5, 5, 2)
	for _, tc := range []struct {
		name string
		p    r3.Vec
		want float64
	}{
		{"center", r3.Vec{Z: 1}, -1},
		{"bottom face", r3.Vec{Z: 0}, 0},
		{"top face", r3.Vec{Z: 2}, 0},
		{"x face", r3.Vec{X: 5, Z: 1}, 0},
		{"y face", r3.Vec{Y: -5, Z: 1}, 0},
		{"outside", r3.Vec{X: 10, Z: 1}, 1},
	} {
		if got := die.Evaluate(tc.p); got != tc.want {
			t.Errorf("%s: got %g, want %g", tc.name, got, tc.want)
		}
	}
}

func TestNilArgumentPanics(t *testing.T) {
	for _, tc := range []struct {
		name string
		fn   func()
	}{
		{"binary", func() { expr.Add(nil, expr.X()) }},
		{"abs", func() { expr.Abs(nil) }},
		{"remap", func() { expr.Remap(expr.X(), nil, expr.Y(), expr.Z()) }},
		{"scale", func() { expr.ScaleUniform(nil, 1) }},
		{"wrap", func() { expr.Wrap("nil", nil) }},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: no panic on nil argument", tc.name)
				}
			}()
			tc.fn()
		}()
	}
}

func TestSprint(t *testing.T) {
	e := expr.Max(expr.Add(expr.X(), expr.Const(2)), expr.Abs(expr.Y()))
	if got, want := expr.Sprint(e), "(max (+ x 2) (abs y))"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	s := expr.ScaleUniform(expr.Z(), 1.5)
	if got, want := expr.Sprint(s), "(scale 1.5 z)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
