// Package visibility decides, once per rendered frame, what the info overlay
// shows about the markers currently in view.
package visibility

import (
	"fmt"
	"math"

	"github.com/askwhyharsh/arlocations/internal/scene"
)

// Frustum returns the nodes inside the camera's view volume, in iteration
// order.
type Frustum interface {
	NodesInside(cam scene.Camera, nodes []*scene.PlacedNode) []*scene.PlacedNode
}

// Display is the single-slot info overlay. Calls are fire-and-forget.
type Display interface {
	Show(text string)
	Hide()
}

// Source provides the placed nodes and their latest distances.
type Source interface {
	Nodes() []*scene.PlacedNode
	Distance(placeID int) (float64, bool)
}

type Reporter struct {
	source  Source
	frustum Frustum
	display Display
}

func NewReporter(source Source, frustum Frustum, display Display) *Reporter {
	return &Reporter{
		source:  source,
		frustum: frustum,
		display: display,
	}
}

// Tick runs the visibility check for one frame. An empty view hides the
// overlay. Otherwise every named visible node overwrites the same slot, so the
// last one in iteration order is what gets shown; the display receives only
// that final text. Visible nodes with no distance yet are skipped.
func (r *Reporter) Tick(cam scene.Camera) {
	visible := r.frustum.NodesInside(cam, r.source.Nodes())
	if len(visible) == 0 {
		r.display.Hide()
		return
	}

	text := ""
	for _, n := range visible {
		if n.Name == "" {
			continue
		}
		distance, ok := r.source.Distance(n.PlaceID)
		if !ok {
			continue
		}
		text = FormatInfo(n.Name, distance)
	}

	if text != "" {
		r.display.Show(text)
	}
}

// FormatInfo renders the overlay text; the distance is rounded half to even.
func FormatInfo(name string, distance float64) string {
	return fmt.Sprintf("Object name: %s\nDistance to reach: %.0f M", name, math.RoundToEven(distance))
}
