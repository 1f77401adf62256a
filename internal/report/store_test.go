package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwhyharsh/arlocations/internal/storage"
	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
)

func TestStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryClient()
	store := NewStore(mem, time.Minute)

	r := &DistanceReport{
		SessionID: "abc",
		Distances: []Entry{
			{PlaceID: 2, Name: "R", Meters: 211.4},
			{PlaceID: 1, Name: "L", Meters: 88.4, Cell: "tf2f5wq"},
		},
	}
	require.NoError(t, store.Save(ctx, r))
	assert.False(t, r.UpdatedAt.IsZero())

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.SessionID)
	require.Len(t, got.Distances, 2)
	assert.Equal(t, 1, got.Distances[0].PlaceID)
	assert.Equal(t, "tf2f5wq", got.Distances[0].Cell)
	assert.Equal(t, 2, got.Distances[1].PlaceID)
}

func TestStorePublishesEverySave(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryClient()
	store := NewStore(mem, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, &DistanceReport{
			SessionID: "abc",
			Distances: []Entry{{PlaceID: 1, Name: "L", Meters: float64(i)}},
		}))
	}

	published := mem.Published(store.Channel("abc"))
	require.Len(t, published, 3)

	var last DistanceReport
	require.NoError(t, json.Unmarshal([]byte(published[2]), &last))
	assert.Equal(t, 2.0, last.Distances[0].Meters)
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore(storage.NewMemoryClient(), time.Minute)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrReportNotFound)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryClient(), time.Minute)

	require.NoError(t, store.Save(ctx, &DistanceReport{SessionID: "abc"}))
	require.NoError(t, store.Delete(ctx, "abc"))

	_, err := store.Get(ctx, "abc")
	assert.ErrorIs(t, err, apperrors.ErrReportNotFound)
}
