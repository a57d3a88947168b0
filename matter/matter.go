// Package matter models filament material behavior relevant to
// slicing.
package matter

import "github.com/soypat/slicer/expr"

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
)

// ViscousMaterial describes a thermoplastic print material.
type ViscousMaterial struct {
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

// Compensate scales a solid model up so the cooled print matches the
// modeled dimensions.
func (m ViscousMaterial) Compensate(e expr.Expr) expr.Expr {
	scale := 1 / (1 - m.shrink)
	return expr.ScaleUniform(e, scale)
}

// InternalDimScale compensates an internal dimension (hole, bore) for
// shrinkage and viscoelastic pull.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		panic("InternalDimScale only works for non-zero dimensions")
	}
	return real*(m.shrink+1) + m.pullShrink
}
