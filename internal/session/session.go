// Package session tracks storefront browsing sessions. A session owns one
// document viewer and one cart; ending a session releases both.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/viewer"
)

// ErrManagerClosed is returned by Acquire after Close.
var ErrManagerClosed = errors.New("session manager is closed")

// Session is the server-side state of one browser session.
type Session struct {
	ID        string
	Viewer    *viewer.Viewer
	CreatedAt time.Time

	lastSeen time.Time
}

// Manager creates sessions on demand and evicts idle ones.
type Manager struct {
	resources   *viewer.ResourceStore
	carts       *cart.Controller
	idleTimeout time.Duration
	log         *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a session manager.
func NewManager(resources *viewer.ResourceStore, carts *cart.Controller, idleTimeout time.Duration, log *slog.Logger) *Manager {
	return &Manager{
		resources:   resources,
		carts:       carts,
		idleTimeout: idleTimeout,
		log:         log,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Acquire returns the session for id, creating it if needed, and marks it
// as recently used.
func (m *Manager) Acquire(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	now := m.now()
	if s, ok := m.sessions[id]; ok {
		s.lastSeen = now
		return s, nil
	}

	// The ID may belong to a session that was ended or evicted earlier.
	m.carts.Revive(id)

	s := &Session{
		ID:        id,
		Viewer:    viewer.New(m.resources, m.log.With("session_id", id)),
		CreatedAt: now,
		lastSeen:  now,
	}
	m.sessions[id] = s
	m.log.Debug("session started", "session_id", id)
	return s, nil
}

// Get returns an existing session without touching it.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// End tears a session down: the viewer is closed, releasing any transient
// resource, and the cart is discarded.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.teardown(ctx, s)
}

// Sweep ends every session idle for longer than the idle timeout and returns
// how many were ended.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		if err := m.teardown(ctx, s); err != nil {
			m.log.Warn("failed to tear down idle session", "session_id", s.ID, "error", err)
		}
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				m.log.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// Close ends every session and refuses new ones.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range all {
		if err := m.teardown(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) teardown(ctx context.Context, s *Session) error {
	s.Viewer.Close()
	if err := m.carts.Discard(ctx, s.ID); err != nil {
		return err
	}
	m.log.Debug("session ended", "session_id", s.ID)
	return nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
