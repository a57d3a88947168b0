package slicer

import (
	"math"

	"github.com/soypat/slicer/expr"
	"github.com/soypat/slicer/internal/d3"
	"github.com/soypat/slicer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// meshDepth is the fixed octree subdivision depth for cross-section
	// meshing.
	meshDepth = 8
	// boundsEps pads the meshing volume so the die faces are not
	// exactly on the volume boundary.
	boundsEps = 1e-8
	// dieHeight is the thickness of the z slab intersected with each
	// cross section. The cross-section field is constant in z, so the
	// slab only needs to comfortably contain the cutting plane.
	dieHeight = 2.0
)

// perimeterExpression builds the implicit cross-section for one
// (layer, perimeter) unit: the model collapsed to the layer mid-height,
// offset by the perimeter centerline distance, intersected with the
// bounding die so the mesher only sees bounded, near-planar geometry.
func perimeterExpression(model expr.Expr, c Config, layer Layer, offset float64) expr.Expr {
	midZ := layer.Z + c.LayerHeight/2
	section := expr.Offset(
		expr.Remap(model, expr.X(), expr.Y(), expr.Const(midZ)),
		offset,
	)
	die := expr.BoundedBox(
		c.Bounds.Min.X, c.Bounds.Min.Y, 0,
		c.Bounds.Max.X, c.Bounds.Max.Y, dieHeight,
	)
	return expr.Max(section, die)
}

// perimeterOffset returns the centerline field offset for perimeter
// index p, half a spacing inside the boundary plus one spacing per
// deeper perimeter.
func perimeterOffset(c Config, p int) float64 {
	return c.PathSpacing() * (float64(p) + 0.5)
}

// meshBounds returns the cubic meshing volume for cross sections:
// centered on the X/Y bounding-box center at z=0, sized to the larger
// planar extent plus a small margin.
func meshBounds(c Config) mesh.Bounds {
	box := d3.Box(c.Bounds)
	center := box.Center()
	extent := box.Size()
	return mesh.Bounds{
		Center: r3.Vec{X: center.X, Y: center.Y, Z: 0},
		Size:   math.Max(extent.X, extent.Y) + boundsEps,
	}
}
