package place

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
)

func ids(places []Place) []int {
	out := make([]int, 0, len(places))
	for _, p := range places {
		out = append(out, p.ID)
	}
	return out
}

func TestNewCatalogKeepsOrder(t *testing.T) {
	c, err := NewCatalog(DefaultPlaces(), 7)
	require.NoError(t, err)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []int{1, 2, 3, 4}, ids(c.Places()))

	p, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, "F", p.Name)

	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestNewCatalogRejectsInvalidPlaces(t *testing.T) {
	tests := []struct {
		name    string
		places  []Place
		wantErr error
	}{
		{
			name: "duplicate id",
			places: []Place{
				{ID: 1, Name: "L", Latitude: 1, Longitude: 1},
				{ID: 1, Name: "R", Latitude: 2, Longitude: 2},
			},
			wantErr: apperrors.ErrDuplicatePlaceID,
		},
		{
			name:    "empty name",
			places:  []Place{{ID: 1, Name: " ", Latitude: 1, Longitude: 1}},
			wantErr: apperrors.ErrEmptyPlaceName,
		},
		{
			name:    "bad latitude",
			places:  []Place{{ID: 1, Name: "L", Latitude: 91, Longitude: 1}},
			wantErr: apperrors.ErrInvalidLatitude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.places, 7)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCatalogPlacesIsACopy(t *testing.T) {
	c, err := NewCatalog(DefaultPlaces(), 7)
	require.NoError(t, err)

	ps := c.Places()
	ps[0].Name = "changed"

	p, _ := c.Get(1)
	assert.Equal(t, "L", p.Name)
}

func TestCatalogNear(t *testing.T) {
	c, err := NewCatalog(DefaultPlaces(), 6)
	require.NoError(t, err)

	near := c.Near(11.0530, 76.9910)
	assert.Equal(t, []int{3, 1, 2, 4}, ids(near))

	assert.Empty(t, c.Near(0, 0))
}

func TestCatalogCell(t *testing.T) {
	c, err := NewCatalog(DefaultPlaces(), 5)
	require.NoError(t, err)

	cell, ok := c.Cell(1)
	require.True(t, ok)
	assert.Len(t, cell, 5)

	_, ok = c.Cell(42)
	assert.False(t, ok)
}
