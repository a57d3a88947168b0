package slicer

import (
	"math"

	"github.com/soypat/slicer/gcode"
	"gonum.org/v1/gonum/spatial/r2"
)

// ExtrusionPath is one continuous filament-deposition polyline together
// with the bead and filament geometry needed to account extruded
// volume. Paths grow append-only during contour extraction and are
// immutable once stored in the slice result.
type ExtrusionPath struct {
	// Width is the printed bead width.
	Width float64
	// Height is the printed bead height (the layer height).
	Height float64
	// Z is the height the path is printed at.
	Z float64
	// filamentArea is the cross-sectional area of the raw filament,
	// the denominator converting extruded volume to feed distance.
	filamentArea float64

	points []r2.Vec
}

func newExtrusionPath(width, height, z, filamentArea float64, start r2.Vec) *ExtrusionPath {
	return &ExtrusionPath{
		Width:        width,
		Height:       height,
		Z:            z,
		filamentArea: filamentArea,
		points:       []r2.Vec{start},
	}
}

func (p *ExtrusionPath) append(point r2.Vec) {
	p.points = append(p.points, point)
}

// Points returns the ordered 2D points of the path. The returned slice
// is owned by the path and must not be modified.
func (p *ExtrusionPath) Points() []r2.Vec {
	return p.points
}

// CrossSection returns the bead cross-sectional area per unit of
// travel: a rectangle of Width-Height by Height with two semicircular
// caps of diameter Height.
func (p *ExtrusionPath) CrossSection() float64 {
	h2 := p.Height / 2
	return (p.Width-p.Height)*p.Height + math.Pi*h2*h2
}

// FeedLength returns the filament feed distance for the segment from
// point i to point i+1. Feed distances are per segment, not
// accumulated.
func (p *ExtrusionPath) FeedLength(i int) float64 {
	volume := r2.Norm(r2.Sub(p.points[i+1], p.points[i])) * p.CrossSection()
	return volume / p.filamentArea
}

// TotalFeed returns the filament feed distance summed over all
// segments.
func (p *ExtrusionPath) TotalFeed() float64 {
	var total float64
	for i := 0; i+1 < len(p.points); i++ {
		total += p.FeedLength(i)
	}
	return total
}

// emit writes the path's motion commands: reposition to the path
// height, travel to the first point, then extrude each segment. Paths
// without points emit nothing.
func (p *ExtrusionPath) emit(w *gcode.Writer) {
	if len(p.points) == 0 {
		return
	}
	w.MoveZ(p.Z)
	w.Travel(p.points[0].X, p.points[0].Y, p.Z)
	for i, point := range p.points[1:] {
		w.Extrude(point.X, point.Y, p.FeedLength(i))
	}
}
