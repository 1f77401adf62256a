package scene

import (
	"image"

	"github.com/askwhyharsh/arlocations/internal/geomath"
)

// Label is the billboard sub-node carrying a place's name image. It always
// faces the camera.
type Label struct {
	Name      string
	Image     image.Image
	Offset    geomath.Vec3 // relative to the owning node, before scaling
	Width     float64
	Height    float64
	Billboard bool
}

// PlacedNode is the render state of one place. It is created on the first
// update for its place and mutated in place afterwards.
type PlacedNode struct {
	PlaceID int
	Name    string

	// Original is the node transform captured at creation; facing
	// rotations are always derived from it so they never accumulate.
	Original    geomath.Mat4
	Placement   geomath.Mat4
	Orientation geomath.Mat4
	Transform   geomath.Mat4
	Scale       geomath.Vec3

	Label *Label
}

// Position returns the node's world position.
func (n *PlacedNode) Position() geomath.Vec3 {
	return n.Transform.Position()
}

// LabelPosition returns the world position of the node's label.
func (n *PlacedNode) LabelPosition() geomath.Vec3 {
	if n.Label == nil {
		return n.Position()
	}
	return n.Transform.Apply(n.Label.Offset.Hadamard(n.Scale))
}

// Camera is the pose and projection of the AR camera for one frame.
type Camera struct {
	Transform   geomath.Mat4 `json:"transform"` // camera to world
	FieldOfView float64      `json:"fov"`       // vertical, degrees
	Aspect      float64      `json:"aspect"`    // width / height
	Near        float64      `json:"near"`
	Far         float64      `json:"far"`
}
