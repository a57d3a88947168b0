package mesh

import "gonum.org/v1/gonum/spatial/r3"

// Marching tetrahedra leaf polygonization.
//
// The leaf cell is split into six tetrahedra sharing the main diagonal
// 0-6 of cubeCorners. Face diagonals of the split line up between
// neighboring cells, so the produced surface is watertight. Corner
// values equal to zero count as outside; edge interpolation then lands
// exactly on the zero-valued corner, which keeps vertices on sampling
// planes bit-exact.

// tetras lists the six tetrahedra by cubeCorners index. Vertex orders
// are chosen so every tetrahedron has positive orientation, which the
// case table below relies on for consistent triangle winding.
var tetras = [6][4]int{
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 1, 6, 5},
	{0, 4, 5, 6},
	{0, 3, 7, 6},
	{0, 4, 6, 7},
}

// tetraEdges enumerates tetrahedron edges by local vertex index pair.
const (
	e01 = iota
	e02
	e03
	e12
	e13
	e23
)

var tetraEdgeVerts = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

// tetraCases maps the 4-bit inside mask (bit i set when local vertex i
// has a negative field value) to the triangles emitted, as triples of
// edge crossings wound with outward-facing normals.
var tetraCases = [16][][3]int{
	0x0: {},
	0x1: {{e01, e02, e03}},
	0x2: {{e01, e13, e12}},
	0x3: {{e02, e03, e13}, {e02, e13, e12}},
	0x4: {{e23, e02, e12}},
	0x5: {{e03, e01, e12}, {e03, e12, e23}},
	0x6: {{e23, e02, e01}, {e13, e23, e01}},
	0x7: {{e23, e03, e13}},
	0x8: {{e23, e13, e03}},
	0x9: {{e01, e02, e23}, {e01, e23, e13}},
	0xA: {{e12, e01, e03}, {e23, e12, e03}},
	0xB: {{e23, e12, e02}},
	0xC: {{e13, e03, e02}, {e12, e13, e02}},
	0xD: {{e01, e12, e13}},
	0xE: {{e01, e03, e02}},
	0xF: {},
}

// mtToTriangles polygonizes one leaf cell given its 8 corner positions
// and field values, appending triangles to b.
func mtToTriangles(b *builder, corners [8]r3.Vec, values [8]float64) {
	for _, tet := range tetras {
		var mask int
		for i, ci := range tet {
			if values[ci] < 0 {
				mask |= 1 << i
			}
		}
		tris := tetraCases[mask]
		if len(tris) == 0 {
			continue
		}
		var crossing [6]Vec
		for ei, ev := range tetraEdgeVerts {
			a, c := tet[ev[0]], tet[ev[1]]
			if (values[a] < 0) == (values[c] < 0) {
				continue // no sign change on this edge
			}
			crossing[ei] = vecFrom(interpolate(corners[a], corners[c], values[a], values[c]))
		}
		for _, tri := range tris {
			b.triangle(crossing[tri[0]], crossing[tri[1]], crossing[tri[2]])
		}
	}
}

// interpolate returns the zero crossing on the segment p0-p1. A zero
// value at p0 returns p0 exactly.
func interpolate(p0, p1 r3.Vec, v0, v1 float64) r3.Vec {
	t := v0 / (v0 - v1)
	return r3.Add(p0, r3.Scale(t, r3.Sub(p1, p0)))
}
