// Package render is the server-side stand-in for the AR renderer: the scene
// graph container nodes are inserted into, the camera frustum test, and the
// billboard label images.
package render

import (
	"sync"

	"github.com/askwhyharsh/arlocations/internal/scene"
)

// Scene is the top-level container PlacedNodes are inserted into. It keeps
// references only; node fields belong to the session goroutine that mutates
// them, so Scene exposes nothing but their immutable identity.
type Scene struct {
	mu    sync.RWMutex
	nodes []*scene.PlacedNode
}

func NewScene() *Scene {
	return &Scene{}
}

// AddNode inserts a node into the scene.
func (s *Scene) AddNode(n *scene.PlacedNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
}

// Len returns the number of nodes in the scene.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// PlaceIDs returns the place IDs of the inserted nodes, in insertion order.
func (s *Scene) PlaceIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.PlaceID
	}
	return ids
}
