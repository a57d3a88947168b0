package slicer

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/slicer/mesh"
	"gonum.org/v1/gonum/spatial/r2"
)

// planeTol is the absolute tolerance deciding whether a vertex lies on
// the cutting plane z=0 of a cross-section mesh.
const planeTol = 1e-8

// pointKey is the exact bit pattern of a 2D single-precision point.
// Keying adjacency by bits rather than a spatial tolerance assumes
// coincident contour points are computed bit-identically by every
// triangle that touches them; the mesher's shared-grid evaluation
// provides that for plane vertices.
type pointKey [2]uint32

func keyOf(v mesh.Vec) pointKey {
	return pointKey{math32.Float32bits(v.X), math32.Float32bits(v.Y)}
}

func (k pointKey) point() r2.Vec {
	return r2.Vec{
		X: float64(math32.Float32frombits(k[0])),
		Y: float64(math32.Float32frombits(k[1])),
	}
}

// adjacency maps a contour point to its successor along the plane
// edges of a slice mesh. Entries keep insertion order so traversal
// restarts are deterministic; inserting an existing key overwrites its
// successor in place, assuming at most one outgoing edge per point.
type adjacency struct {
	keys []pointKey
	m    map[pointKey]pointKey
}

func newAdjacency() *adjacency {
	return &adjacency{m: make(map[pointKey]pointKey)}
}

func (a *adjacency) insert(from, to pointKey) {
	if _, ok := a.m[from]; !ok {
		a.keys = append(a.keys, from)
	}
	a.m[from] = to
}

// first returns the oldest entry still present.
func (a *adjacency) first() (pointKey, bool) {
	for len(a.keys) > 0 {
		k := a.keys[0]
		if _, ok := a.m[k]; ok {
			return k, true
		}
		a.keys = a.keys[1:]
	}
	return pointKey{}, false
}

// take removes and returns the successor of k.
func (a *adjacency) take(k pointKey) (pointKey, bool) {
	to, ok := a.m[k]
	if ok {
		delete(a.m, k)
	}
	return to, ok
}

func (a *adjacency) len() int { return len(a.m) }

func onPlane(v mesh.Vec) bool {
	return math.Abs(float64(v.Z)) < planeTol
}

// planeEdges collects the directed triangle edges of m lying on the
// cutting plane. Only triangles with exactly two vertices on the plane
// contribute: those straddle the surface at the plane, whereas
// triangles fully on the plane tile the cross-section interior.
func planeEdges(m *mesh.Mesh) *adjacency {
	adj := newAdjacency()
	for _, tri := range m.Triangles {
		vertsAtPlane := 0
		for _, vi := range tri {
			if onPlane(m.Vertices[vi]) {
				vertsAtPlane++
			}
		}
		if vertsAtPlane != 2 {
			continue
		}
		for _, edge := range [3][2]int{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}} {
			v0, v1 := m.Vertices[edge[0]], m.Vertices[edge[1]]
			if onPlane(v0) && onPlane(v1) {
				adj.insert(keyOf(v0), keyOf(v1))
			}
		}
	}
	return adj
}

// extractContours reconstructs the contour polylines of one slice mesh
// and returns them as extrusion paths stamped at height z. A mesh with
// no plane edges yields no paths, a valid outcome for layers outside
// the solid.
func extractContours(m *mesh.Mesh, width, height, z, filamentArea float64) []*ExtrusionPath {
	adj := planeEdges(m)
	start, ok := adj.first()
	if !ok {
		return nil
	}
	var paths []*ExtrusionPath
	cur := newExtrusionPath(width, height, z, filamentArea, start.point())
	last := start
	for adj.len() > 0 {
		next, ok := adj.take(last)
		if !ok {
			// Chain ended; close this path and start another from any
			// remaining edge.
			paths = append(paths, cur)
			start, ok = adj.first()
			if !ok {
				break
			}
			cur = newExtrusionPath(width, height, z, filamentArea, start.point())
			last = start
			continue
		}
		cur.append(next.point())
		last = next
		if adj.len() == 0 {
			paths = append(paths, cur)
		}
	}
	return paths
}
