package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/google/uuid"
)

// Factory builds the screen for one recipient.
type Factory func(recipientID string) *recipient.Screen

// Info describes an open session.
type Info struct {
	ID          string    `json:"session_id"`
	RecipientID string    `json:"recipient_id"`
	OpenedAt    time.Time `json:"opened_at"`
}

type entry struct {
	info   Info
	screen *recipient.Screen
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager keeps the open screens, one per session id.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu      sync.RWMutex
	screens map[string]*entry

	lockMu sync.Mutex
	locks  map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	newID   func() string
	onOpen  []func(id string, screen *recipient.Screen)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking around WithLock.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(m *Manager) {
		m.locker = locker
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the uuid session ids.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// WithOnOpen registers fn to run for every new session before its first fetch.
func WithOnOpen(fn func(id string, screen *recipient.Screen)) Option {
	return func(m *Manager) {
		m.onOpen = append(m.onOpen, fn)
	}
}

// OnOpen is WithOnOpen for an existing Manager.
func (m *Manager) OnOpen(fn func(id string, screen *recipient.Screen)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOpen = append(m.onOpen, fn)
}

// NewManager creates a Manager that builds screens with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		screens: make(map[string]*entry),
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates a screen for recipientID and starts loading the record.
func (m *Manager) Open(ctx context.Context, recipientID string) (string, *recipient.Screen, error) {
	if recipientID == "" {
		return "", nil, fmt.Errorf("open session: recipient id is required")
	}

	id := m.newID()
	screen := m.factory(recipientID)

	m.mu.Lock()
	if _, exists := m.screens[id]; exists {
		m.mu.Unlock()
		return "", nil, fmt.Errorf("open session: duplicate session id %q", id)
	}
	m.screens[id] = &entry{
		info:   Info{ID: id, RecipientID: recipientID, OpenedAt: time.Now()},
		screen: screen,
	}

	hooks := append([]func(string, *recipient.Screen){}, m.onOpen...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(id, screen)
	}

	m.logger.Info("session opened", "session_id", id, "recipient_id", recipientID)
	screen.Fetch(ctx)
	return id, screen, nil
}

// Get returns the screen of an open session.
func (m *Manager) Get(id string) (*recipient.Screen, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.screens[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return e.screen, nil
}

// Close forgets the session once its in-flight calls have returned.
// It takes the session lock, so it never drains while WithLock is running.
func (m *Manager) Close(id string) error {
	l := m.acquire(id)
	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		m.release(id)
	}()

	m.mu.Lock()
	e, ok := m.screens[id]
	delete(m.screens, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	e.screen.Wait()
	m.logger.Info("session closed", "session_id", id)
	return nil
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() {
	for _, info := range m.List() {
		_ = m.Close(info.ID)
	}
}

// List returns the open sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.screens))
	for _, e := range m.screens {
		out = append(out, e.info)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()

	e, exists := m.locks[id]
	if !exists {
		e = &lockEntry{}
		m.locks[id] = e
	}
	e.refs++
	return e
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()

	e, exists := m.locks[id]
	if !exists {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn on the session's screen while holding the session lock.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context, *recipient.Screen) error) error {
	e := m.acquire(id)
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		m.release(id)
	}()

	screen, err := m.Get(id)
	if err != nil {
		return err
	}

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx, screen)
}
