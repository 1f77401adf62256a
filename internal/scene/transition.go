package scene

import "github.com/askwhyharsh/arlocations/internal/placement"

// Transition applies a freshly solved placement to a node.
type Transition interface {
	Apply(node *PlacedNode, sol placement.Solution, created bool)
}

// Overwrite assigns the solution as-is. Repeated updates with the same
// input leave the node bit-identical.
type Overwrite struct{}

func (Overwrite) Apply(node *PlacedNode, sol placement.Solution, _ bool) {
	node.Placement = sol.Placement
	node.Orientation = sol.Orientation
	node.Transform = sol.Transform
	node.Scale = sol.Scale
}

// Interpolate moves an existing node a fraction of the way toward the new
// solution on every update. Fresh nodes snap to their target.
type Interpolate struct {
	Factor float64
}

func (i Interpolate) Apply(node *PlacedNode, sol placement.Solution, created bool) {
	if created || i.Factor >= 1 || i.Factor <= 0 {
		Overwrite{}.Apply(node, sol, created)
		return
	}

	node.Placement = node.Placement.Lerp(sol.Placement, i.Factor)
	node.Orientation = node.Orientation.Lerp(sol.Orientation, i.Factor)
	node.Transform = node.Transform.Lerp(sol.Transform, i.Factor)
	node.Scale = node.Scale.Lerp(sol.Scale, i.Factor)
}

// NewTransition returns the strategy registered under name, Overwrite by
// default.
func NewTransition(name string, factor float64) Transition {
	if name == "interpolated" {
		return Interpolate{Factor: factor}
	}
	return Overwrite{}
}
