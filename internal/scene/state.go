// Package scene keeps the per-place render state of an AR session: one
// PlacedNode per place, the latest distance to each place, and the rules for
// applying new placements to existing nodes.
package scene

import (
	"image"
	"sort"

	"github.com/askwhyharsh/arlocations/internal/geomath"
	"github.com/askwhyharsh/arlocations/internal/place"
	"github.com/askwhyharsh/arlocations/internal/placement"
	"github.com/askwhyharsh/arlocations/pkg/logger"
)

// Host is the scene graph the nodes are inserted into. The state only holds
// a reference to it; the host owns its container.
type Host interface {
	AddNode(node *PlacedNode)
}

// LabelRenderer renders a place name into the image shown on its billboard.
type LabelRenderer interface {
	Render(text string) image.Image
}

type Config struct {
	Transition  Transition
	LabelOffset geomath.Vec3
	LabelSize   float64
}

func DefaultConfig() Config {
	return Config{
		Transition:  Overwrite{},
		LabelOffset: geomath.Vec3{Y: 4},
		LabelSize:   10,
	}
}

// State maps place IDs to their nodes and distances. It is not safe for
// concurrent use; the owning session confines it to one goroutine.
type State struct {
	solver *placement.Solver
	host   Host
	labels LabelRenderer
	cfg    Config
	logger logger.Logger

	nodes     map[int]*PlacedNode
	order     []int
	distances map[int]float64
}

func NewState(solver *placement.Solver, host Host, labels LabelRenderer, cfg Config, log logger.Logger) *State {
	if cfg.Transition == nil {
		cfg.Transition = Overwrite{}
	}
	return &State{
		solver:    solver,
		host:      host,
		labels:    labels,
		cfg:       cfg,
		logger:    log,
		nodes:     make(map[int]*PlacedNode),
		distances: make(map[int]float64),
	}
}

// Update recomputes distance and placement for every place from pose,
// creating nodes for places seen for the first time. It returns the number of
// nodes created.
func (s *State) Update(pose place.UserPose, places []place.Place) int {
	created := 0
	user := pose.Location()

	for _, p := range places {
		distance := geomath.Distance(user, p.Location())
		s.distances[p.ID] = distance

		node, ok := s.nodes[p.ID]
		if !ok {
			node = s.newNode(p)
			s.nodes[p.ID] = node
			s.order = append(s.order, p.ID)
			s.host.AddNode(node)
			created++
		}

		sol := s.solver.Solve(pose, p, distance, node.Original)
		s.cfg.Transition.Apply(node, sol, !ok)
	}

	if created > 0 {
		s.logger.Debug("Placed new nodes", "created", created, "total", len(s.nodes))
	}

	return created
}

func (s *State) newNode(p place.Place) *PlacedNode {
	var img image.Image
	if s.labels != nil {
		img = s.labels.Render(p.Name)
	}

	// Empty geometry has a zero bounding box, so centring the pivot leaves
	// the original transform at identity.
	return &PlacedNode{
		PlaceID:  p.ID,
		Name:     p.Name,
		Original: geomath.Identity(),
		Scale:    geomath.Uniform(1),
		Label: &Label{
			Name:      p.Name,
			Image:     img,
			Offset:    s.cfg.LabelOffset,
			Width:     s.cfg.LabelSize,
			Height:    s.cfg.LabelSize,
			Billboard: true,
		},
	}
}

// Node returns the node for a place ID.
func (s *State) Node(id int) (*PlacedNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns the nodes in creation order.
func (s *State) Nodes() []*PlacedNode {
	out := make([]*PlacedNode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (s *State) Len() int { return len(s.nodes) }

// Distance returns the distance in meters to a place as of the last update.
func (s *State) Distance(id int) (float64, bool) {
	d, ok := s.distances[id]
	return d, ok
}

// Distances returns a copy of the distance report.
func (s *State) Distances() map[int]float64 {
	out := make(map[int]float64, len(s.distances))
	for id, d := range s.distances {
		out[id] = d
	}
	return out
}

// IDs returns the place IDs with a distance report, ascending.
func (s *State) IDs() []int {
	ids := make([]int, 0, len(s.distances))
	for id := range s.distances {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
