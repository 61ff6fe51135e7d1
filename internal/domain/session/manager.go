package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Manager owns the live monitors, keyed by session id. It is the only
// writer of the shared slot store: starting a session writes the new
// authoritative id, which supersedes any previous session for that user
// within one slot-check interval.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	slots    SlotStore
	signOut  SignOutFunc
	monitors map[string]*Monitor
}

// NewManager creates a session manager. signOut may be nil when no
// upstream authentication provider is wired.
func NewManager(cfg Config, slots SlotStore, signOut SignOutFunc) *Manager {
	return &Manager{
		cfg:      cfg.withDefaults(),
		slots:    slots,
		signOut:  signOut,
		monitors: make(map[string]*Monitor),
	}
}

// Start creates a fresh session for the user and marks it authoritative.
// Any earlier session for the same user is superseded and will expire on
// its next slot check.
func (mg *Manager) Start(ctx context.Context, userID int64) (*Monitor, error) {
	id := uuid.NewString()

	if err := mg.slots.SetActive(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("failed to claim session slot: %w", err)
	}

	m := newMonitor(mg.cfg, id, userID, mg.slots, mg.signOut, nil, func(reason ExpireReason) {
		mg.remove(id)
	})

	mg.mu.Lock()
	mg.monitors[id] = m
	mg.mu.Unlock()

	log.Printf("Session %s started for user %d", id, userID)
	return m, nil
}

// Touch records activity for the session. Returns ErrSessionNotFound for
// unknown ids and ErrSessionExpired once the session is terminal.
func (mg *Manager) Touch(sessionID string) error {
	m, ok := mg.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return m.Touch()
}

// Extend applies the explicit session extension.
func (mg *Manager) Extend(sessionID string) error {
	m, ok := mg.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return m.Extend()
}

// Status returns the snapshot for a session.
func (mg *Manager) Status(sessionID string) (Status, error) {
	m, ok := mg.get(sessionID)
	if !ok {
		return Status{}, ErrSessionNotFound
	}
	return m.Status(), nil
}

// SignOut terminates a session through the explicit logout path.
func (mg *Manager) SignOut(sessionID string) error {
	m, ok := mg.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	m.SignOut()
	return nil
}

// DisposeAll cancels every live monitor's timers. Used on shutdown; it does
// not run the expiry side effects, so sessions resume from the auth
// provider's source of truth on restart.
func (mg *Manager) DisposeAll() {
	mg.mu.Lock()
	monitors := make([]*Monitor, 0, len(mg.monitors))
	for _, m := range mg.monitors {
		monitors = append(monitors, m)
	}
	mg.monitors = make(map[string]*Monitor)
	mg.mu.Unlock()

	for _, m := range monitors {
		m.Dispose()
	}
}

// Count returns the number of live monitors.
func (mg *Manager) Count() int {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	return len(mg.monitors)
}

func (mg *Manager) get(sessionID string) (*Monitor, bool) {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	m, ok := mg.monitors[sessionID]
	return m, ok
}

func (mg *Manager) remove(sessionID string) {
	mg.mu.Lock()
	delete(mg.monitors, sessionID)
	mg.mu.Unlock()
}

// MemorySlotStore is a process-local SlotStore. It backs single-node
// deployments and tests; the Redis implementation is used when sessions
// must be shared across instances.
type MemorySlotStore struct {
	mu    sync.Mutex
	slots map[int64]string
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: make(map[int64]string)}
}

func (s *MemorySlotStore) SetActive(ctx context.Context, userID int64, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[userID] = sessionID
	return nil
}

func (s *MemorySlotStore) Active(ctx context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[userID], nil
}

func (s *MemorySlotStore) Clear(ctx context.Context, userID int64, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots[userID] == sessionID {
		delete(s.slots, userID)
	}
	return nil
}

// ensure interface compliance
var _ SlotStore = (*MemorySlotStore)(nil)
