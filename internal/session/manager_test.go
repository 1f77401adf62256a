package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
	"github.com/askwhyharsh/arlocations/pkg/logger"
)

func TestManagerLifecycle(t *testing.T) {
	deps, _ := testDependencies(t)
	m := NewManager(deps, ManagerConfig{IdleTTL: time.Minute}, logger.NewNop())
	t.Cleanup(m.Shutdown)

	s, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	// the session goroutine is running
	snap, err := got.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNotDetermined, snap.Status)

	require.NoError(t, m.Remove(s.ID))
	assert.Equal(t, 0, m.Count())
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.ErrorIs(t, m.Remove(s.ID), apperrors.ErrSessionNotFound)

	<-s.Done()
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	deps, _ := testDependencies(t)
	m := NewManager(deps, ManagerConfig{IdleTTL: time.Minute}, logger.NewNop())
	t.Cleanup(m.Shutdown)

	s, err := m.Create()
	require.NoError(t, err)

	assert.Equal(t, 0, m.evictIdle(time.Now()))
	assert.Equal(t, 1, m.evictIdle(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, m.Count())
	<-s.Done()
}

func TestManagerShutdown(t *testing.T) {
	deps, _ := testDependencies(t)
	m := NewManager(deps, ManagerConfig{}, logger.NewNop())

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)

	m.Shutdown()
	<-a.Done()
	<-b.Done()

	_, err = m.Create()
	assert.ErrorIs(t, err, apperrors.ErrSessionClosed)
}

func TestManagerReleasesSessionState(t *testing.T) {
	ctx := context.Background()
	deps, reports := testDependencies(t)
	m := NewManager(deps, ManagerConfig{IdleTTL: time.Minute}, logger.NewNop())
	t.Cleanup(m.Shutdown)

	var released []string
	m.OnRemove(reports.Delete)
	m.OnRemove(func(_ context.Context, sessionID string) error {
		released = append(released, sessionID)
		return nil
	})

	removed, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, removed.Authorize(ctx, StatusAuthorizedWhenInUse))
	require.NoError(t, removed.UpdateLocation(ctx, user))
	_, err = reports.Get(ctx, removed.ID)
	require.NoError(t, err)

	require.NoError(t, m.Remove(removed.ID))
	_, err = reports.Get(ctx, removed.ID)
	assert.ErrorIs(t, err, apperrors.ErrReportNotFound)

	idle, err := m.Create()
	require.NoError(t, err)
	require.Equal(t, 1, m.evictIdle(time.Now().Add(2*time.Minute)))

	assert.Equal(t, []string{removed.ID, idle.ID}, released)
}
