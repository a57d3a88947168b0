package slicer

// LayerKind identifies how a layer is printed. Only standard layers are
// produced; the kind exists so support and interface layers can be
// added without reshaping the plan.
type LayerKind uint8

const (
	// LayerStandard is a plain perimeter layer.
	LayerStandard LayerKind = iota
)

// Layer is one planned horizontal slab of the print.
type Layer struct {
	// Z is the planning height of the layer.
	Z float64
	// Kind is the layer type.
	Kind LayerKind
}

// planLayers computes the ordered layer sequence for the configured
// vertical range. The height formula range*i/count - zMin is
// intentional, including its behavior for nonzero zMin; see DESIGN.md
// before changing it.
func planLayers(zMin, zMax, layerHeight float64) []Layer {
	zRange := zMax - zMin
	count := zRange / layerHeight
	var layers []Layer
	for i := 0.0; i < count; i++ {
		layers = append(layers, Layer{
			Z:    zRange*i/count - zMin,
			Kind: LayerStandard,
		})
	}
	return layers
}
