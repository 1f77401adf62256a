package render

import (
	"math"

	"github.com/askwhyharsh/arlocations/internal/geomath"
	"github.com/askwhyharsh/arlocations/internal/scene"
)

// ViewFrustum tests nodes against a perspective camera looking down its
// local -Z axis.
type ViewFrustum struct{}

// NodesInside returns, in input order, the nodes whose label lies inside the
// camera's view volume. A camera whose transform cannot be inverted sees
// nothing.
func (ViewFrustum) NodesInside(cam scene.Camera, nodes []*scene.PlacedNode) []*scene.PlacedNode {
	if !cam.Transform.IsFinite() || !(cam.Far > cam.Near) || cam.Aspect <= 0 {
		return nil
	}
	view, err := geomath.Inverse(cam.Transform)
	if err != nil {
		return nil
	}

	tanY := math.Tan(geomath.ToRadians(cam.FieldOfView) / 2)
	tanX := tanY * cam.Aspect

	var visible []*scene.PlacedNode
	for _, n := range nodes {
		p := view.Apply(n.LabelPosition())
		depth := -p.Z
		if depth < cam.Near || depth > cam.Far {
			continue
		}
		if math.Abs(p.X) > depth*tanX || math.Abs(p.Y) > depth*tanY {
			continue
		}
		visible = append(visible, n)
	}
	return visible
}
