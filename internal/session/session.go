// Package session runs AR sessions. Each session confines its scene state to
// a single goroutine started by Run; every other goroutine talks to it through
// the session's inbox.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/askwhyharsh/arlocations/internal/geomath"
	"github.com/askwhyharsh/arlocations/internal/place"
	"github.com/askwhyharsh/arlocations/internal/placement"
	"github.com/askwhyharsh/arlocations/internal/render"
	"github.com/askwhyharsh/arlocations/internal/report"
	"github.com/askwhyharsh/arlocations/internal/scene"
	"github.com/askwhyharsh/arlocations/internal/visibility"
	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
	"github.com/askwhyharsh/arlocations/pkg/logger"
)

// Device is the remote end of a session: the info overlay plus a sink for
// node transforms. Calls must not block.
type Device interface {
	visibility.Display
	PushNodes(nodes []NodeState)
}

// reportTimeout bounds how long a report save may hold up the session.
const reportTimeout = 500 * time.Millisecond

// ReportSink receives the distance report after every applied location fix.
type ReportSink interface {
	Save(ctx context.Context, r *report.DistanceReport) error
}

// Dependencies are shared by every session a Manager creates.
type Dependencies struct {
	Catalog *place.Catalog
	Solver  *placement.Solver
	Labels  scene.LabelRenderer
	Frustum visibility.Frustum
	Reports ReportSink
	Scene   scene.Config
}

// NodeState is a copy of a node's placement safe to hand to other goroutines.
type NodeState struct {
	PlaceID   int          `json:"place_id"`
	Name      string       `json:"name"`
	Transform geomath.Mat4 `json:"transform"`
	Scale     float64      `json:"scale"`
	Distance  float64      `json:"distance"`
}

type Snapshot struct {
	ID        string              `json:"id"`
	Status    AuthorizationStatus `json:"status"`
	Paused    bool                `json:"paused"`
	HasPose   bool                `json:"has_pose"`
	Pose      place.UserPose      `json:"pose"`
	Nodes     []NodeState         `json:"nodes"`
	CreatedAt time.Time           `json:"created_at"`
}

type Session struct {
	ID        string
	CreatedAt time.Time

	deps     Dependencies
	scene    *render.Scene
	state    *scene.State
	reporter *visibility.Reporter
	device   *deviceSlot
	logger   logger.Logger

	inbox     chan any
	done      chan struct{}
	closeOnce sync.Once
	lastSeen  atomic.Int64

	// owned by the Run goroutine
	status  AuthorizationStatus
	paused  bool
	pose    place.UserPose
	hasPose bool
}

type locationEvent struct {
	pose  place.UserPose
	reply chan error
}

type frameEvent struct{ camera scene.Camera }

type authorizationEvent struct{ status AuthorizationStatus }

type pauseEvent struct{ paused bool }

type snapshotEvent struct{ reply chan Snapshot }

func New(id string, deps Dependencies, queueSize int, log logger.Logger) *Session {
	if queueSize <= 0 {
		queueSize = 64
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		deps:      deps,
		scene:     render.NewScene(),
		device:    &deviceSlot{},
		logger:    log,
		inbox:     make(chan any, queueSize),
		done:      make(chan struct{}),
		status:    StatusNotDetermined,
	}
	s.state = scene.NewState(deps.Solver, s.scene, deps.Labels, deps.Scene, log)
	s.reporter = visibility.NewReporter(s.state, deps.Frustum, s.device)
	s.touch()
	return s
}

// Run processes session input until ctx is cancelled or the session is
// closed. It must be called exactly once.
func (s *Session) Run(ctx context.Context) {
	s.logger.Debug("Session started", "session_id", s.ID)
	defer s.logger.Debug("Session stopped", "session_id", s.ID)

	for {
		select {
		case ev := <-s.inbox:
			s.handle(ctx, ev)
		case <-s.done:
			return
		case <-ctx.Done():
			s.Close()
			return
		}
	}
}

func (s *Session) handle(ctx context.Context, ev any) {
	switch ev := ev.(type) {
	case locationEvent:
		ev.reply <- s.applyLocation(ctx, ev.pose)
	case frameEvent:
		if !s.paused {
			s.reporter.Tick(ev.camera)
		}
	case authorizationEvent:
		if ev.status != s.status {
			s.logger.Info("Location authorization changed", "session_id", s.ID, "from", s.status, "to", ev.status)
		}
		s.status = ev.status
	case pauseEvent:
		s.paused = ev.paused
	case snapshotEvent:
		ev.reply <- s.snapshot()
	}
}

func (s *Session) applyLocation(ctx context.Context, pose place.UserPose) error {
	if !s.status.Authorized() {
		return apperrors.ErrLocationNotAuthorized
	}
	if s.paused {
		s.logger.Debug("Dropped location fix while paused", "session_id", s.ID)
		return nil
	}

	s.pose, s.hasPose = pose, true
	s.state.Update(pose, s.deps.Catalog.Places())

	if s.deps.Reports != nil {
		saveCtx, cancel := context.WithTimeout(ctx, reportTimeout)
		if err := s.deps.Reports.Save(saveCtx, s.distanceReport()); err != nil {
			s.logger.Error("Failed to save distance report", "session_id", s.ID, "error", err)
		}
		cancel()
	}
	s.device.PushNodes(s.nodeStates())

	return nil
}

func (s *Session) distanceReport() *report.DistanceReport {
	r := &report.DistanceReport{SessionID: s.ID}
	for _, id := range s.state.IDs() {
		d, _ := s.state.Distance(id)
		p, _ := s.deps.Catalog.Get(id)
		cell, _ := s.deps.Catalog.Cell(id)
		r.Distances = append(r.Distances, report.Entry{
			PlaceID: id,
			Name:    p.Name,
			Meters:  d,
			Cell:    cell,
		})
	}
	return r
}

func (s *Session) nodeStates() []NodeState {
	nodes := s.state.Nodes()
	out := make([]NodeState, 0, len(nodes))
	for _, n := range nodes {
		d, _ := s.state.Distance(n.PlaceID)
		out = append(out, NodeState{
			PlaceID:   n.PlaceID,
			Name:      n.Name,
			Transform: n.Transform,
			Scale:     n.Scale.X,
			Distance:  d,
		})
	}
	return out
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Status:    s.status,
		Paused:    s.paused,
		HasPose:   s.hasPose,
		Pose:      s.pose,
		Nodes:     s.nodeStates(),
		CreatedAt: s.CreatedAt,
	}
}

// UpdateLocation applies a location fix and waits for the result. It returns
// ErrLocationNotAuthorized while the session lacks location permission.
func (s *Session) UpdateLocation(ctx context.Context, pose place.UserPose) error {
	reply := make(chan error, 1)
	if err := s.send(ctx, locationEvent{pose: pose, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return apperrors.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frame queues a camera pose for the visibility check.
func (s *Session) Frame(ctx context.Context, cam scene.Camera) error {
	return s.send(ctx, frameEvent{camera: cam})
}

func (s *Session) Authorize(ctx context.Context, status AuthorizationStatus) error {
	return s.send(ctx, authorizationEvent{status: status})
}

func (s *Session) Pause(ctx context.Context) error {
	return s.send(ctx, pauseEvent{paused: true})
}

func (s *Session) Resume(ctx context.Context) error {
	return s.send(ctx, pauseEvent{paused: false})
}

// Snapshot returns a copy of the session state after every input queued
// before it has been processed.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := s.send(ctx, snapshotEvent{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-s.done:
		return Snapshot{}, apperrors.ErrSessionClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (s *Session) send(ctx context.Context, ev any) error {
	select {
	case <-s.done:
		return apperrors.ErrSessionClosed
	default:
	}

	s.touch()
	select {
	case s.inbox <- ev:
		return nil
	case <-s.done:
		return apperrors.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attach routes overlay and node updates to d, replacing any previous device.
func (s *Session) Attach(d Device) {
	s.device.set(d)
	s.touch()
}

// Detach removes d if it is still the attached device.
func (s *Session) Detach(d Device) {
	s.device.clear(d)
}

// NodeCount returns the number of nodes inserted into the session's scene.
func (s *Session) NodeCount() int {
	return s.scene.Len()
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// deviceSlot forwards to the attached device and drops calls when there is
// none.
type deviceSlot struct {
	mu     sync.RWMutex
	device Device
}

func (d *deviceSlot) set(dev Device) {
	d.mu.Lock()
	d.device = dev
	d.mu.Unlock()
}

func (d *deviceSlot) clear(dev Device) {
	d.mu.Lock()
	if d.device == dev {
		d.device = nil
	}
	d.mu.Unlock()
}

func (d *deviceSlot) get() Device {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.device
}

func (d *deviceSlot) Show(text string) {
	if dev := d.get(); dev != nil {
		dev.Show(text)
	}
}

func (d *deviceSlot) Hide() {
	if dev := d.get(); dev != nil {
		dev.Hide()
	}
}

func (d *deviceSlot) PushNodes(nodes []NodeState) {
	if dev := d.get(); dev != nil {
		dev.PushNodes(nodes)
	}
}
