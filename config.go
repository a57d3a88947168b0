package slicer

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/slicer/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrConfig reports an invalid print configuration. Configuration is
// validated eagerly, before any geometry work starts.
var ErrConfig = errors.New("invalid print configuration")

// Config is the immutable per-run print configuration.
type Config struct {
	// NozzleDiameter is the extruder nozzle bore in millimeters.
	NozzleDiameter float64
	// LayerHeight is the vertical slab thickness of one layer.
	LayerHeight float64
	// FilamentDiameter is the raw filament diameter feeding the extruder.
	FilamentDiameter float64
	// ExtrusionWidthScalar scales NozzleDiameter into the printed bead
	// width.
	ExtrusionWidthScalar float64
	// Perimeters is the number of nested perimeter walls per layer.
	Perimeters int
	// Bounds is the axis-aligned print volume the model is sliced
	// within.
	Bounds r3.Box
}

// ExtrusionWidth returns the printed bead width.
func (c Config) ExtrusionWidth() float64 {
	return c.ExtrusionWidthScalar * c.NozzleDiameter
}

// PathSpacing returns the centerline distance between adjacent
// perimeter beads. Adjacent beads share the rounded flank of the
// stadium-shaped cross section, hence the layer-height correction.
func (c Config) PathSpacing() float64 {
	return c.ExtrusionWidth() - c.LayerHeight*(1-math.Pi/4)
}

// FilamentArea returns the cross-sectional area of the raw filament.
func (c Config) FilamentArea() float64 {
	r := c.FilamentDiameter / 2
	return math.Pi * r * r
}

func (c Config) validate() error {
	extent := d3.Box(c.Bounds).Size()
	switch {
	case c.LayerHeight <= 0 || math.IsNaN(c.LayerHeight):
		return fmt.Errorf("%w: layer height %g must be positive", ErrConfig, c.LayerHeight)
	case c.NozzleDiameter <= 0 || math.IsNaN(c.NozzleDiameter):
		return fmt.Errorf("%w: nozzle diameter %g must be positive", ErrConfig, c.NozzleDiameter)
	case c.FilamentDiameter <= 0 || math.IsNaN(c.FilamentDiameter):
		return fmt.Errorf("%w: filament diameter %g must be positive", ErrConfig, c.FilamentDiameter)
	case c.ExtrusionWidthScalar <= 0 || math.IsNaN(c.ExtrusionWidthScalar):
		return fmt.Errorf("%w: extrusion width scalar %g must be positive", ErrConfig, c.ExtrusionWidthScalar)
	case c.Perimeters < 1:
		return fmt.Errorf("%w: perimeter count %d must be at least 1", ErrConfig, c.Perimeters)
	case extent.X <= 0:
		return fmt.Errorf("%w: inverted X bounds [%g, %g]", ErrConfig, c.Bounds.Min.X, c.Bounds.Max.X)
	case extent.Y <= 0:
		return fmt.Errorf("%w: inverted Y bounds [%g, %g]", ErrConfig, c.Bounds.Min.Y, c.Bounds.Max.Y)
	case extent.Z <= 0:
		return fmt.Errorf("%w: inverted Z bounds [%g, %g]", ErrConfig, c.Bounds.Min.Z, c.Bounds.Max.Z)
	}
	return nil
}
