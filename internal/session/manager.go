package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
	"github.com/askwhyharsh/arlocations/pkg/logger"
)

// cleanupTimeout bounds each CleanupFunc call.
const cleanupTimeout = 5 * time.Second

// CleanupFunc releases state a session left in shared stores, such as its
// distance report or rate limit counters.
type CleanupFunc func(ctx context.Context, sessionID string) error

type ManagerConfig struct {
	IdleTTL       time.Duration
	QueueSize     int
	SweepInterval time.Duration
}

// Manager owns every live session and runs each one on its own goroutine.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	deps     Dependencies
	cfg      ManagerConfig
	logger   logger.Logger
	cleanups []CleanupFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(deps Dependencies, cfg ManagerConfig, log logger.Logger) *Manager {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		cfg:      cfg,
		logger:   log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnRemove registers fn to run after a session is removed or evicted. It must
// be called before the manager is used.
func (m *Manager) OnRemove(fn CleanupFunc) {
	m.cleanups = append(m.cleanups, fn)
}

func (m *Manager) release(sessionID string) {
	for _, fn := range m.cleanups {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		if err := fn(ctx, sessionID); err != nil {
			m.logger.Error("Failed to clean up session state", "session_id", sessionID, "error", err)
		}
		cancel()
	}
}

// Create starts a new session.
func (m *Manager) Create() (*Session, error) {
	if m.ctx.Err() != nil {
		return nil, apperrors.ErrSessionClosed
	}

	s := New(uuid.New().String(), m.deps, m.cfg.QueueSize, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		s.Run(m.ctx)
	}()

	m.logger.Info("Session created", "session_id", s.ID)
	return s, nil
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s, nil
}

// Remove closes a session and forgets it.
func (m *Manager) Remove(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return apperrors.ErrSessionNotFound
	}
	s.Close()
	m.release(sessionID)
	return nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Start begins background eviction of idle sessions. It returns when ctx is
// done, after closing every session.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	m.logger.Info("Session Manager started")

	for {
		select {
		case now := <-ticker.C:
			if n := m.evictIdle(now); n > 0 {
				m.logger.Info("Evicted idle sessions", "count", n, "remaining", m.Count())
			}
		case <-ctx.Done():
			m.Shutdown()
			m.logger.Info("Session Manager stopped")
			return
		}
	}
}

func (m *Manager) evictIdle(now time.Time) int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.cfg.IdleTTL {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
		m.release(s.ID)
	}
	return len(idle)
}

// Shutdown closes all sessions and waits for their goroutines to exit.
func (m *Manager) Shutdown() {
	m.cancel()

	m.mu.Lock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.wg.Wait()
}
