// Package expr implements an immutable implicit-surface expression graph.
//
// An expression is a scalar function of 3D space. Negative values are
// inside the solid, positive values outside. Expressions compose by
// referencing existing nodes so no operation deep-copies its operands:
// cloning a model is free and composing two models allocates a single
// node.
package expr

import (
	"math"

	sdfx "github.com/deadsy/sdfx/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Expr is the interface to an implicit-surface expression node.
type Expr interface {
	// Evaluate returns the scalar field value at p. The value is
	// negative if p is contained within the solid.
	Evaluate(p r3.Vec) float64
}

type axis uint8

const (
	axisX axis = iota
	axisY
	axisZ
)

// X returns the expression that evaluates to the X coordinate.
func X() Expr { return axisX }

// Y returns the expression that evaluates to the Y coordinate.
func Y() Expr { return axisY }

// Z returns the expression that evaluates to the Z coordinate.
func Z() Expr { return axisZ }

func (a axis) Evaluate(p r3.Vec) float64 {
	switch a {
	case axisX:
		return p.X
	case axisY:
		return p.Y
	}
	return p.Z
}

type constant float64

// Const returns a constant-valued expression.
func Const(v float64) Expr { return constant(v) }

func (c constant) Evaluate(r3.Vec) float64 { return float64(c) }

type binOp uint8

const (
	opAdd binOp = iota
	opSub
	opMul
	opMin
	opMax
)

type binary struct {
	op   binOp
	a, b Expr
}

// Add returns the sum of two expressions.
// Summing a solid with a positive constant offsets its surface outward.
func Add(a, b Expr) Expr { return newBinary(opAdd, a, b) }

// Sub returns the difference of two expressions.
func Sub(a, b Expr) Expr { return newBinary(opSub, a, b) }

// Mul returns the product of two expressions.
func Mul(a, b Expr) Expr { return newBinary(opMul, a, b) }

// Min returns the pairwise minimum of two expressions.
// Minimum composes solids as a CSG union.
func Min(a, b Expr) Expr { return newBinary(opMin, a, b) }

// Max returns the pairwise maximum of two expressions.
// Maximum composes solids as a CSG intersection.
func Max(a, b Expr) Expr { return newBinary(opMax, a, b) }

func newBinary(op binOp, a, b Expr) Expr {
	if a == nil || b == nil {
		panic("nil Expr argument")
	}
	return &binary{op: op, a: a, b: b}
}

func (e *binary) Evaluate(p r3.Vec) float64 {
	a := e.a.Evaluate(p)
	b := e.b.Evaluate(p)
	switch e.op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	case opMin:
		return math.Min(a, b)
	}
	return math.Max(a, b)
}

type abs struct {
	a Expr
}

// Abs returns the absolute value of an expression.
func Abs(a Expr) Expr {
	if a == nil {
		panic("nil Expr argument")
	}
	return &abs{a: a}
}

func (e *abs) Evaluate(p r3.Vec) float64 {
	return math.Abs(e.a.Evaluate(p))
}

type remap struct {
	a          Expr
	ex, ey, ez Expr
}

// Remap substitutes the coordinate arguments of an expression. The
// returned expression evaluates a at the point (ex(p), ey(p), ez(p)).
// Substituting an axis with a constant collapses the field along that
// axis: Remap(a, X(), Y(), Const(z0)) is the cross-section of a at z0
// extruded to all heights.
func Remap(a, ex, ey, ez Expr) Expr {
	if a == nil || ex == nil || ey == nil || ez == nil {
		panic("nil Expr argument")
	}
	return &remap{a: a, ex: ex, ey: ey, ez: ez}
}

func (e *remap) Evaluate(p r3.Vec) float64 {
	return e.a.Evaluate(r3.Vec{
		X: e.ex.Evaluate(p),
		Y: e.ey.Evaluate(p),
		Z: e.ez.Evaluate(p),
	})
}

// Offset offsets the field of an expression by a constant distance.
// Positive distances grow the solid.
func Offset(a Expr, distance float64) Expr {
	return Add(a, Const(distance))
}

// Translate moves a solid by v.
func Translate(a Expr, v r3.Vec) Expr {
	return Remap(a,
		Sub(X(), Const(v.X)),
		Sub(Y(), Const(v.Y)),
		Sub(Z(), Const(v.Z)),
	)
}

type scaleUniform struct {
	a Expr
	k float64
}

// ScaleUniform uniformly scales a solid on all axes. The field remains
// a distance field: the evaluated value is scaled back by k.
func ScaleUniform(a Expr, k float64) Expr {
	if a == nil {
		panic("nil Expr argument")
	}
	if k <= 0 {
		panic("non-positive scale factor")
	}
	return &scaleUniform{a: a, k: k}
}

func (e *scaleUniform) Evaluate(p r3.Vec) float64 {
	return e.a.Evaluate(r3.Scale(1/e.k, p)) * e.k
}

// opaque wraps an externally supplied signed distance function as an
// expression leaf. The wrapped field participates in composition but
// cannot be rendered by Sprint beyond its name.
type opaque struct {
	name string
	s    sdfx.SDF3
}

// Wrap adapts a deadsy/sdfx signed distance function to an expression
// leaf. name identifies the field in diagnostic dumps.
func Wrap(name string, s sdfx.SDF3) Expr {
	if s == nil {
		panic("nil SDF3 argument")
	}
	return &opaque{name: name, s: s}
}

func (e *opaque) Evaluate(p r3.Vec) float64 {
	return e.s.Evaluate(sdfx.V3{X: p.X, Y: p.Y, Z: p.Z})
}

// BoundedBox returns a Chebyshev-distance die spanning the given
// extents. The unit die max(|x|,|y|,|z|)-1 is remapped onto each axis
// by its half-extent radius and center average.
func BoundedBox(xMin, yMin, zMin, xMax, yMax, zMax float64) Expr {
	xRadius, xAvg := (xMax-xMin)/2, (xMax+xMin)/2
	yRadius, yAvg := (yMax-yMin)/2, (yMax+yMin)/2
	zRadius, zAvg := (zMax-zMin)/2, (zMax+zMin)/2
	die := Sub(Max(Max(Abs(X()), Abs(Y())), Abs(Z())), Const(1))
	return Remap(die,
		Sub(Mul(X(), Const(1/xRadius)), Const(xAvg)),
		Sub(Mul(Y(), Const(1/yRadius)), Const(yAvg)),
		Sub(Mul(Z(), Const(1/zRadius)), Const(zAvg)),
	)
}
