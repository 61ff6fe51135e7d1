// Package session implements the session security monitor: inactivity and
// absolute-duration ceilings, a warning window before inactivity expiry, and
// duplicate-session detection through a shared per-user slot.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// State of a monitored session.
type State int

const (
	StateActive State = iota
	StateWarningShown
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarningShown:
		return "warning"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// ExpireReason records which path terminated a session.
type ExpireReason string

const (
	ReasonInactivity  ExpireReason = "inactivity"
	ReasonMaxDuration ExpireReason = "max_duration"
	ReasonSuperseded  ExpireReason = "superseded"
	ReasonSignOut     ExpireReason = "sign_out"
)

// Domain errors
var (
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionNotFound = errors.New("session not found")
)

// Config holds the monitor timing parameters.
type Config struct {
	MaxInactivity     time.Duration // inactivity ceiling
	Warning           time.Duration // warning window before inactivity expiry
	MaxSession        time.Duration // absolute session-duration ceiling
	MaxExtensions     int           // explicit extensions that reset the absolute clock
	SlotCheckInterval time.Duration // duplicate-session detection period
	ActivityThrottle  time.Duration // minimum gap between activity resets
}

func (c Config) withDefaults() Config {
	if c.MaxInactivity <= 0 {
		c.MaxInactivity = 5 * time.Minute
	}
	if c.Warning <= 0 || c.Warning >= c.MaxInactivity {
		c.Warning = c.MaxInactivity / 5
	}
	if c.MaxSession <= 0 {
		c.MaxSession = 30 * time.Minute
	}
	if c.SlotCheckInterval <= 0 {
		c.SlotCheckInterval = 10 * time.Second
	}
	if c.ActivityThrottle <= 0 {
		c.ActivityThrottle = time.Second
	}
	return c
}

// SlotStore is the shared storage slot holding the authoritative session id
// per user. A later SetActive supersedes any earlier session for that user.
type SlotStore interface {
	// SetActive writes sessionID as the authoritative session for the user.
	SetActive(ctx context.Context, userID int64, sessionID string) error

	// Active returns the authoritative session id for the user, or "" if none.
	Active(ctx context.Context, userID int64) (string, error)

	// Clear removes the slot, but only if it still holds sessionID.
	Clear(ctx context.Context, userID int64, sessionID string) error
}

// SignOutFunc invokes the authentication provider's sign-out. Failures are
// logged and never block local session termination.
type SignOutFunc func(ctx context.Context, userID int64, sessionID string) error

// Status is a point-in-time snapshot of a monitor.
type Status struct {
	SessionID           string        `json:"sessionId"`
	State               string        `json:"state"`
	InactivityRemaining time.Duration `json:"inactivityRemaining"`
	SessionRemaining    time.Duration `json:"sessionRemaining"`
	Extensions          int           `json:"extensions"`
	ExtensionsLeft      int           `json:"extensionsLeft"`
}

// Monitor is the timer-driven state machine for one session instance.
// All transitions happen under mu; timer callbacks carry the generation they
// were armed with and give up if a later transition superseded them.
type Monitor struct {
	mu  sync.Mutex
	cfg Config

	id     string
	userID int64

	state        State
	lastActivity time.Time
	startedAt    time.Time
	extensions   int
	gen          uint64

	warnTimer   *time.Timer
	expireTimer *time.Timer
	maxTimer    *time.Timer
	done        chan struct{}

	slots   SlotStore
	signOut SignOutFunc

	onWarning func(remaining time.Duration)
	onExpired func(reason ExpireReason)
}

// newMonitor creates a monitor in the Active state and arms its timers.
// The caller must have already written the session id to the slot store.
func newMonitor(cfg Config, id string, userID int64, slots SlotStore, signOut SignOutFunc, onWarning func(time.Duration), onExpired func(ExpireReason)) *Monitor {
	now := time.Now()
	m := &Monitor{
		cfg:          cfg,
		id:           id,
		userID:       userID,
		state:        StateActive,
		lastActivity: now,
		startedAt:    now,
		done:         make(chan struct{}),
		slots:        slots,
		signOut:      signOut,
		onWarning:    onWarning,
		onExpired:    onExpired,
	}

	m.mu.Lock()
	m.armTimersLocked()
	m.mu.Unlock()

	go m.slotCheckLoop()
	return m
}

// ID returns the opaque session identifier.
func (m *Monitor) ID() string { return m.id }

// UserID returns the owning user.
func (m *Monitor) UserID() int64 { return m.userID }

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status returns a snapshot for the session status endpoint.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	st := Status{
		SessionID:  m.id,
		State:      m.state.String(),
		Extensions: m.extensions,
	}
	if left := m.cfg.MaxExtensions - m.extensions; left > 0 {
		st.ExtensionsLeft = left
	}
	if m.state != StateExpired {
		st.InactivityRemaining = m.cfg.MaxInactivity - now.Sub(m.lastActivity)
		if st.InactivityRemaining < 0 {
			st.InactivityRemaining = 0
		}
		st.SessionRemaining = m.cfg.MaxSession - now.Sub(m.startedAt)
		if st.SessionRemaining < 0 {
			st.SessionRemaining = 0
		}
	}
	return st
}

// Touch records a qualifying activity event. Resets are throttled; the
// absolute ceiling is checked on every reset attempt so a busy session
// still expires at MaxSession. Returns ErrSessionExpired once terminal.
func (m *Monitor) Touch() error {
	m.mu.Lock()

	if m.state == StateExpired {
		m.mu.Unlock()
		return ErrSessionExpired
	}

	now := time.Now()
	if now.Sub(m.startedAt) >= m.cfg.MaxSession {
		m.expireLocked(ReasonMaxDuration)
		return ErrSessionExpired
	}

	if m.state == StateActive && now.Sub(m.lastActivity) < m.cfg.ActivityThrottle {
		m.mu.Unlock()
		return nil
	}

	m.lastActivity = now
	m.state = StateActive
	m.armTimersLocked()
	m.mu.Unlock()
	return nil
}

// Extend is the explicit "keep me signed in" action from the warning modal.
// It resets the absolute session clock, but only MaxExtensions times; past
// the cap only the inactivity clock resets and the absolute ceiling stands.
func (m *Monitor) Extend() error {
	m.mu.Lock()

	if m.state == StateExpired {
		m.mu.Unlock()
		return ErrSessionExpired
	}

	now := time.Now()
	if now.Sub(m.startedAt) >= m.cfg.MaxSession {
		m.expireLocked(ReasonMaxDuration)
		return ErrSessionExpired
	}

	if m.extensions < m.cfg.MaxExtensions {
		m.extensions++
		m.startedAt = now
	}
	m.lastActivity = now
	m.state = StateActive
	m.armTimersLocked()
	m.mu.Unlock()
	return nil
}

// SignOut terminates the session through the explicit path. The same
// cleanup runs as for any expiry.
func (m *Monitor) SignOut() {
	m.mu.Lock()
	if m.state == StateExpired {
		m.mu.Unlock()
		return
	}
	m.expireLocked(ReasonSignOut)
}

// Dispose cancels every timer without running the expiry sequence.
// Used on application shutdown.
func (m *Monitor) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateExpired {
		return
	}
	m.state = StateExpired
	m.gen++
	m.stopTimersLocked()
	close(m.done)
}

// armTimersLocked cancels pending timers and re-arms the warning and
// absolute-duration timers for the current timestamps. Callers hold mu.
func (m *Monitor) armTimersLocked() {
	m.gen++
	gen := m.gen
	m.stopTimersLocked()

	warnAfter := m.cfg.MaxInactivity - m.cfg.Warning - time.Since(m.lastActivity)
	if warnAfter < 0 {
		warnAfter = 0
	}
	m.warnTimer = time.AfterFunc(warnAfter, func() { m.enterWarning(gen) })

	maxAfter := m.cfg.MaxSession - time.Since(m.startedAt)
	if maxAfter < 0 {
		maxAfter = 0
	}
	m.maxTimer = time.AfterFunc(maxAfter, func() { m.expireIfCurrent(gen, ReasonMaxDuration) })
}

func (m *Monitor) stopTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.expireTimer != nil {
		m.expireTimer.Stop()
		m.expireTimer = nil
	}
	if m.maxTimer != nil {
		m.maxTimer.Stop()
		m.maxTimer = nil
	}
}

// enterWarning transitions Active -> WarningShown and starts the countdown
// toward inactivity expiry.
func (m *Monitor) enterWarning(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateActive {
		m.mu.Unlock()
		return
	}

	m.state = StateWarningShown
	remaining := m.cfg.Warning
	m.expireTimer = time.AfterFunc(remaining, func() { m.expireIfCurrent(gen, ReasonInactivity) })
	onWarning := m.onWarning
	m.mu.Unlock()

	if onWarning != nil {
		onWarning(remaining)
	}
}

// expireIfCurrent is the timer-callback entry into expiry. A callback armed
// before a reset sees a stale generation and gives up.
func (m *Monitor) expireIfCurrent(gen uint64, reason ExpireReason) {
	m.mu.Lock()
	if gen != m.gen || m.state == StateExpired {
		m.mu.Unlock()
		return
	}
	m.expireLocked(reason)
}

// expireLocked performs the one-way expiry sequence: cancel timers, sign out
// upstream (failure tolerated), unconditionally clear the shared slot, then
// notify. Callers hold mu; it is released before the side effects run.
func (m *Monitor) expireLocked(reason ExpireReason) {
	m.state = StateExpired
	m.gen++
	m.stopTimersLocked()
	close(m.done)
	onExpired := m.onExpired
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if m.signOut != nil {
		if err := m.signOut(ctx, m.userID, m.id); err != nil {
			// Local termination must not depend on upstream success.
			log.Printf("Session %s: sign-out failed (continuing cleanup): %v", m.id, err)
		}
	}

	if err := m.slots.Clear(ctx, m.userID, m.id); err != nil {
		log.Printf("Session %s: failed to clear session slot: %v", m.id, err)
	}

	log.Printf("Session %s expired for user %d (reason: %s)", m.id, m.userID, reason)

	if onExpired != nil {
		onExpired(reason)
	}
}

// slotCheckLoop periodically compares this instance's id against the shared
// slot. A mismatch means a newer session superseded this one.
func (m *Monitor) slotCheckLoop() {
	ticker := time.NewTicker(m.cfg.SlotCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			active, err := m.slots.Active(ctx, m.userID)
			cancel()
			if err != nil {
				log.Printf("Session %s: slot check failed: %v", m.id, err)
				continue
			}
			if active != m.id {
				m.mu.Lock()
				if m.state == StateExpired {
					m.mu.Unlock()
					return
				}
				m.expireLocked(ReasonSuperseded)
				return
			}
		}
	}
}
