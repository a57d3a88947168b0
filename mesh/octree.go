package mesh

import (
	"errors"
	"math"
	"sync"

	"github.com/soypat/slicer/expr"
	"gonum.org/v1/gonum/spatial/r3"
)

// OctreeMesher meshes expressions with octree space sampling and
// marching tetrahedra polygonization of the leaf cells.
type OctreeMesher struct{}

var _ Mesher = OctreeMesher{}

// Mesh builds a triangle mesh of the zero iso-surface of e inside the
// cubic bounds. The octree starts at the full bounds cube and subdivides
// depth times, so the leaf sampling cell has side bounds.Size/2^depth.
// Empty subtrees are pruned with the field value at the subtree center.
func (OctreeMesher) Mesh(e expr.Expr, depth int, bounds Bounds) (*Mesh, error) {
	if e == nil {
		return nil, errors.New("nil expression")
	}
	if depth < 1 || depth > 20 {
		return nil, errors.New("octree depth must be in [1,20]")
	}
	if bounds.Size <= 0 || math.IsNaN(bounds.Size) || math.IsInf(bounds.Size, 0) {
		return nil, errors.New("invalid bounds size")
	}
	// The smallest octree cube (side == resolution) is tested for
	// emptiness, so the leaf cell sits one level above it and spans two
	// resolution units per side.
	levels := uint(depth) + 2
	resolution := bounds.Size / float64(uint(1)<<(depth+1))
	origin := r3.Sub(bounds.Center, r3.Vec{
		X: bounds.Size / 2,
		Y: bounds.Size / 2,
		Z: bounds.Size / 2,
	})
	oc := octree{
		fc:   newFieldCache(e, origin, resolution, levels),
		todo: []cube{{v3i{0, 0, 0}, levels - 1}},
		b:    newBuilder(),
	}
	for len(oc.todo) > 0 {
		c := oc.todo[len(oc.todo)-1]
		oc.todo = oc.todo[:len(oc.todo)-1]
		oc.processCube(c)
	}
	return &oc.b.mesh, nil
}

type v3i [3]int

func (v v3i) Add(u v3i) v3i {
	return v3i{v[0] + u[0], v[1] + u[1], v[2] + u[2]}
}

func (v v3i) AddScalar(s int) v3i {
	return v3i{v[0] + s, v[1] + s, v[2] + s}
}

type cube struct {
	v3i      // origin of cube as integers
	n   uint // level of cube, size = 1 << n
}

type octree struct {
	fc   *fieldCache
	todo []cube
	b    *builder
}

// cubeCorners are the corner offsets of a leaf cell in resolution units,
// ordered bottom ring then top ring.
var cubeCorners = [8]v3i{
	{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
	{0, 0, 2}, {2, 0, 2}, {2, 2, 2}, {0, 2, 2},
}

// Process a cube. Generate triangles, or more cubes.
func (oc *octree) processCube(c cube) {
	if c.n == 1 {
		// this cube is at the required resolution
		var corners [8]r3.Vec
		var values [8]float64
		for i, offset := range cubeCorners {
			corners[i], values[i] = oc.fc.Evaluate(c.Add(offset))
		}
		mtToTriangles(oc.b, corners, values)
		return
	}
	// process the sub cubes
	n := c.n - 1
	s := 1 << n
	subCubes := [8]cube{
		{c.Add(v3i{0, 0, 0}), n},
		{c.Add(v3i{s, 0, 0}), n},
		{c.Add(v3i{s, s, 0}), n},
		{c.Add(v3i{0, s, 0}), n},
		{c.Add(v3i{0, 0, s}), n},
		{c.Add(v3i{s, 0, s}), n},
		{c.Add(v3i{s, s, s}), n},
		{c.Add(v3i{0, s, s}), n},
	}
	// Eliminate empty cubes.
	for _, candidate := range subCubes {
		if !oc.fc.IsEmpty(&candidate) {
			oc.todo = append(oc.todo, candidate)
		}
	}
}

// fieldCache evaluates the expression through a grid-point cache to
// avoid repeated evaluations. Cached evaluation also guarantees every
// cube sees bit-identical corner coordinates and field values for
// shared grid points.
type fieldCache struct {
	mu         sync.Mutex // lock the cache during reads/writes
	cache      map[v3i]float64
	origin     r3.Vec  // origin of the overall bounding cube
	resolution float64 // size of smallest octree cube
	hdiag      []float64
	e          expr.Expr
}

func newFieldCache(e expr.Expr, origin r3.Vec, resolution float64, n uint) *fieldCache {
	if n >= 64 {
		panic("levels must be less than word size for hdiag generation")
	}
	fc := fieldCache{
		origin:     origin,
		resolution: resolution,
		hdiag:      make([]float64, n),
		e:          e,
		cache:      make(map[v3i]float64),
	}
	// lut for cube half diagonal lengths
	for i := range fc.hdiag {
		s := float64(int(1)<<uint(i)) * resolution
		fc.hdiag[i] = 0.5 * math.Sqrt(3.0*s*s)
	}
	return &fc
}

func (fc *fieldCache) Evaluate(vi v3i) (r3.Vec, float64) {
	v := r3.Add(fc.origin, r3.Scale(fc.resolution, r3.Vec{
		X: float64(vi[0]),
		Y: float64(vi[1]),
		Z: float64(vi[2]),
	}))
	dist, found := fc.read(vi)
	if found {
		return v, dist
	}
	dist = fc.e.Evaluate(v)
	fc.write(vi, dist)
	return v, dist
}

// IsEmpty returns true if the cube contains no surface. Assumes the
// field magnitude does not exceed the distance to the surface.
func (fc *fieldCache) IsEmpty(c *cube) bool {
	s := 1 << (c.n - 1) // half side
	_, d := fc.Evaluate(c.AddScalar(s))
	return math.Abs(d) >= fc.hdiag[c.n]
}

func (fc *fieldCache) read(vi v3i) (float64, bool) {
	fc.mu.Lock()
	dist, found := fc.cache[vi]
	fc.mu.Unlock()
	return dist, found
}

func (fc *fieldCache) write(vi v3i, dist float64) {
	fc.mu.Lock()
	fc.cache[vi] = dist
	fc.mu.Unlock()
}
