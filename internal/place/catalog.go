package place

import (
	"fmt"
	"sort"

	"github.com/mmcloughlin/geohash"

	"github.com/askwhyharsh/arlocations/internal/geomath"
	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
	"github.com/askwhyharsh/arlocations/pkg/validator"
)

// Catalog is the ordered, validated set of active places. It is built once
// and never mutated, so it may be shared between sessions.
type Catalog struct {
	places    []Place
	index     map[int]int
	cells     map[string][]int
	precision uint
}

// NewCatalog validates places (unique IDs, non-empty names, valid
// coordinates) and indexes them by geohash cell of the given precision.
func NewCatalog(places []Place, precision uint) (*Catalog, error) {
	if precision == 0 {
		precision = 7
	}

	v := validator.NewValidator()
	c := &Catalog{
		places:    make([]Place, 0, len(places)),
		index:     make(map[int]int, len(places)),
		cells:     make(map[string][]int),
		precision: precision,
	}

	for _, p := range places {
		if _, ok := c.index[p.ID]; ok {
			return nil, fmt.Errorf("place %d: %w", p.ID, apperrors.ErrDuplicatePlaceID)
		}
		if err := v.ValidatePlaceName(p.Name); err != nil {
			return nil, fmt.Errorf("place %d: %w", p.ID, err)
		}
		if err := v.ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
			return nil, fmt.Errorf("place %d: %w", p.ID, err)
		}

		pos := len(c.places)
		c.places = append(c.places, p)
		c.index[p.ID] = pos

		cell := c.cellOf(p.Latitude, p.Longitude)
		c.cells[cell] = append(c.cells[cell], pos)
	}

	return c, nil
}

// Places returns a copy of the places in catalog order.
func (c *Catalog) Places() []Place {
	out := make([]Place, len(c.places))
	copy(out, c.places)
	return out
}

// Len returns the number of places.
func (c *Catalog) Len() int { return len(c.places) }

// Get returns the place with the given ID.
func (c *Catalog) Get(id int) (Place, bool) {
	pos, ok := c.index[id]
	if !ok {
		return Place{}, false
	}
	return c.places[pos], true
}

// Cell returns the geohash cell the place with the given ID is indexed under.
func (c *Catalog) Cell(id int) (string, bool) {
	p, ok := c.Get(id)
	if !ok {
		return "", false
	}
	return c.cellOf(p.Latitude, p.Longitude), true
}

// Near returns the places in the cell containing (lat, lon) and its eight
// neighbours, closest first.
func (c *Catalog) Near(lat, lon float64) []Place {
	cell := c.cellOf(lat, lon)
	cells := append([]string{cell}, geohash.Neighbors(cell)...)

	seen := make(map[int]bool)
	var out []Place
	for _, gh := range cells {
		for _, pos := range c.cells[gh] {
			p := c.places[pos]
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
		}
	}

	from := geomath.Coordinate{Latitude: lat, Longitude: lon}
	sort.SliceStable(out, func(i, j int) bool {
		return geomath.HaversineDistance(from, out[i].Location()) <
			geomath.HaversineDistance(from, out[j].Location())
	})

	return out
}

func (c *Catalog) cellOf(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, c.precision)
}
