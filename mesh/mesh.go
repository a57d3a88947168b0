// Package mesh provides triangulated approximations of implicit-surface
// expressions. Meshes are indexed: vertices are stored once, in
// single precision, and triangles reference them by index.
package mesh

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/slicer/expr"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a single-precision 3D vertex.
type Vec struct {
	X, Y, Z float32
}

// Bits returns the exact bit pattern of the vertex coordinates.
func (v Vec) Bits() [3]uint32 {
	return [3]uint32{math32.Float32bits(v.X), math32.Float32bits(v.Y), math32.Float32bits(v.Z)}
}

// Mesh is an indexed triangle mesh. Triangles index into Vertices.
type Mesh struct {
	Vertices  []Vec
	Triangles [][3]int
}

// Bounds is the cubic meshing volume: a cube of side Size centered on
// Center.
type Bounds struct {
	Center r3.Vec
	Size   float64
}

// Mesher turns an implicit-surface expression into a triangle mesh.
// depth is the octree subdivision depth; the smallest sampling cell has
// side bounds.Size/2^depth.
type Mesher interface {
	Mesh(e expr.Expr, depth int, bounds Bounds) (*Mesh, error)
}

// builder accumulates triangles into an indexed mesh, deduplicating
// vertices by their exact bit pattern so coincident corners computed by
// neighboring cells share one index.
type builder struct {
	mesh  Mesh
	index map[[3]uint32]int
}

func newBuilder() *builder {
	return &builder{index: make(map[[3]uint32]int)}
}

func (b *builder) vertex(v Vec) int {
	bits := v.Bits()
	if i, ok := b.index[bits]; ok {
		return i
	}
	i := len(b.mesh.Vertices)
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	b.index[bits] = i
	return i
}

// triangle appends a triangle, dropping degenerate ones whose vertices
// collapse to a shared bit pattern.
func (b *builder) triangle(v0, v1, v2 Vec) {
	i0, i1, i2 := b.vertex(v0), b.vertex(v1), b.vertex(v2)
	if i0 == i1 || i1 == i2 || i2 == i0 {
		return
	}
	b.mesh.Triangles = append(b.mesh.Triangles, [3]int{i0, i1, i2})
}

func vecFrom(v r3.Vec) Vec {
	return Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func r3From(v Vec) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Normal returns the right-hand normal of triangle t.
func (m *Mesh) Normal(t [3]int) r3.Vec {
	v0 := r3From(m.Vertices[t[0]])
	e1 := r3.Sub(r3From(m.Vertices[t[1]]), v0)
	e2 := r3.Sub(r3From(m.Vertices[t[2]]), v0)
	n := r3.Cross(e1, e2)
	if norm := r3.Norm(n); norm > 0 && !math.IsInf(norm, 0) {
		return r3.Scale(1/norm, n)
	}
	return n
}
