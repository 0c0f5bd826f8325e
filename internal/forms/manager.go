package forms

import (
	"fmt"
	"sync"
	"time"

	"festival-media-center/internal/intake"
	"festival-media-center/internal/notify"
	"festival-media-center/internal/preview"
	"festival-media-center/internal/submission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config for a Manager
type Config struct {
	Latencies Latencies
	Limits    intake.Limits
	// TTL closes sessions idle for longer. Zero disables expiry.
	TTL time.Duration
	// SweepInterval is how often expired sessions are looked for
	SweepInterval time.Duration
}

// Manager owns every open form session
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	specs    map[Kind]Spec
	intake   *intake.Intake
	alloc    preview.Allocator
	notifier notify.Notifier
	clock    submission.Clock
	cfg      Config
	log      *zap.Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// ManagerOption customises a Manager
type ManagerOption func(*Manager)

// WithClock replaces the wall clock for sessions and expiry
func WithClock(c submission.Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a manager and starts its expiry sweeper when both TTL
// and SweepInterval are set
func NewManager(cfg Config, alloc preview.Allocator, notifier notify.Notifier, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		specs:    Specs(cfg.Latencies),
		intake:   intake.New(alloc, cfg.Limits),
		alloc:    alloc,
		notifier: notifier,
		clock:    submission.RealClock,
		cfg:      cfg,
		log:      zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if cfg.TTL > 0 && cfg.SweepInterval > 0 {
		m.wg.Add(1)
		go m.sweeper()
	}
	return m
}

// Spec returns the definition of a form kind
func (m *Manager) Spec(kind Kind) (Spec, bool) {
	spec, ok := m.specs[kind]
	return spec, ok
}

// Open starts a new session of the given kind
func (m *Manager) Open(kind Kind) (*Session, error) {
	spec, ok := m.specs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	s := newSession(uuid.NewString(), spec, m.intake, m.alloc, m.notifier, m.clock)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.log.Info("form session opened", zap.String("session", s.id), zap.String("kind", string(kind)))
	return s, nil
}

// Get returns an open session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close tears a session down and forgets it
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.Close()
	m.log.Info("form session closed", zap.String("session", id))
	return nil
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes every session idle for longer than the TTL and returns how
// many it closed
func (m *Manager) Sweep() int {
	if m.cfg.TTL <= 0 {
		return 0
	}
	now := m.clock.Now()

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince(now) > m.cfg.TTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.log.Info("expired form sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (m *Manager) sweeper() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.done:
			return
		}
	}
}

// Stop halts the sweeper and closes every session
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()

		m.mu.Lock()
		sessions := m.sessions
		m.sessions = make(map[string]*Session)
		m.mu.Unlock()

		for _, s := range sessions {
			s.Close()
		}
	})
}
