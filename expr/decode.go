package expr

import (
	"encoding/json"
	"io"

	sdfx "github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// nodeSpec is the JSON form of one expression node.
type nodeSpec struct {
	Op       string     `json:"op"`
	Args     []nodeSpec `json:"args,omitempty"`
	Radius   float64    `json:"radius,omitempty"`
	Height   float64    `json:"height,omitempty"`
	Round    float64    `json:"round,omitempty"`
	Size     []float64  `json:"size,omitempty"`
	By       []float64  `json:"by,omitempty"`
	Distance float64    `json:"distance,omitempty"`
	Factor   float64    `json:"factor,omitempty"`
}

// Decode reads a JSON solid-model description and returns the
// expression it denotes. Primitive leaves are built on deadsy/sdfx
// signed distance functions; composite nodes reference their operand
// subgraphs without copying.
func Decode(r io.Reader) (Expr, error) {
	var spec nodeSpec
	dec := json.NewDecoder(r)
	if err := dec.Decode(&spec); err != nil {
		return nil, errors.Wrap(err, "decode model")
	}
	e, err := build(spec)
	return e, errors.Wrap(err, "decode model")
}

func build(spec nodeSpec) (Expr, error) {
	switch spec.Op {
	case "sphere":
		s, err := sdfx.Sphere3D(spec.Radius)
		if err != nil {
			return nil, errors.Wrap(err, "sphere")
		}
		return Wrap("sphere", s), nil

	case "box":
		if len(spec.Size) != 3 {
			return nil, errors.Errorf("box: size needs 3 elements, got %d", len(spec.Size))
		}
		s, err := sdfx.Box3D(sdfx.V3{X: spec.Size[0], Y: spec.Size[1], Z: spec.Size[2]}, spec.Round)
		if err != nil {
			return nil, errors.Wrap(err, "box")
		}
		return Wrap("box", s), nil

	case "cylinder":
		s, err := sdfx.Cylinder3D(spec.Height, spec.Radius, spec.Round)
		if err != nil {
			return nil, errors.Wrap(err, "cylinder")
		}
		return Wrap("cylinder", s), nil

	case "union", "intersect":
		if len(spec.Args) < 2 {
			return nil, errors.Errorf("%s: needs at least 2 args, got %d", spec.Op, len(spec.Args))
		}
		e, err := build(spec.Args[0])
		if err != nil {
			return nil, errors.Wrap(err, spec.Op)
		}
		for _, arg := range spec.Args[1:] {
			operand, err := build(arg)
			if err != nil {
				return nil, errors.Wrap(err, spec.Op)
			}
			if spec.Op == "union" {
				e = Min(e, operand)
			} else {
				e = Max(e, operand)
			}
		}
		return e, nil

	case "difference":
		if len(spec.Args) != 2 {
			return nil, errors.Errorf("difference: needs 2 args, got %d", len(spec.Args))
		}
		a, err := build(spec.Args[0])
		if err != nil {
			return nil, errors.Wrap(err, "difference")
		}
		b, err := build(spec.Args[1])
		if err != nil {
			return nil, errors.Wrap(err, "difference")
		}
		return Max(a, Mul(b, Const(-1))), nil

	case "offset":
		a, err := buildSole(spec)
		if err != nil {
			return nil, err
		}
		return Offset(a, spec.Distance), nil

	case "translate":
		if len(spec.By) != 3 {
			return nil, errors.Errorf("translate: by needs 3 elements, got %d", len(spec.By))
		}
		a, err := buildSole(spec)
		if err != nil {
			return nil, err
		}
		return Translate(a, r3.Vec{X: spec.By[0], Y: spec.By[1], Z: spec.By[2]}), nil

	case "scale":
		if spec.Factor <= 0 {
			return nil, errors.Errorf("scale: non-positive factor %g", spec.Factor)
		}
		a, err := buildSole(spec)
		if err != nil {
			return nil, err
		}
		return ScaleUniform(a, spec.Factor), nil

	case "":
		return nil, errors.New("node is missing op field")
	}
	return nil, errors.Errorf("unknown op %q", spec.Op)
}

func buildSole(spec nodeSpec) (Expr, error) {
	if len(spec.Args) != 1 {
		return nil, errors.Errorf("%s: needs exactly 1 arg, got %d", spec.Op, len(spec.Args))
	}
	a, err := build(spec.Args[0])
	return a, errors.Wrap(err, spec.Op)
}
