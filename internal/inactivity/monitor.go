package inactivity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/core/events"
	"github.com/frahmantamala/incubation-console/internal/obs"
	"github.com/frahmantamala/incubation-console/internal/session"
)

// ReasonTimeLayout renders the local time embedded in the backend logout reason.
const ReasonTimeLayout = "1/2/2006, 3:04:05 PM"

const ExpiredMessage = "Your session has expired due to inactivity. Please log in again."

type State int

const (
	StateActive State = iota
	StateLoggedOut
)

func (s State) String() string {
	if s == StateActive {
		return "ACTIVE"
	}
	return "LOGGED_OUT"
}

// Notifier shows the expiry notice and returns once the operator dismissed it.
type Notifier interface {
	NotifyExpired(ctx context.Context, message string) error
}

// BackendNotifier tells the backend a session ended. Failures never block the local logout.
type BackendNotifier interface {
	NotifyLogout(ctx context.Context, reason string) error
}

// SessionStore is the part of session.Store the monitor needs.
type SessionStore interface {
	Current() (session.Session, bool)
	Logout(ctx context.Context, reason string) bool
}

type Config struct {
	Timeout       time.Duration
	LogoutTimeout time.Duration
}

// Monitor logs the session out after a period without activity.
//
// A guard flag makes sure one logout sequence runs per session, whichever of the idle timer
// or a manual logout gets there first. A sequence still waiting on its notice is cancelled
// by a new login or a manual logout and then leaves the session alone. The lock is never held
// while calling the store, the notifier or the backend.
type Monitor struct {
	mu            sync.Mutex
	timeout       time.Duration
	logoutTimeout time.Duration
	state         State
	guard         bool
	timer         *time.Timer
	generation    uint64
	sequence      chan struct{}
	sequenceID    uint64
	sequenceStop  context.CancelFunc

	store    SessionStore
	backend  BackendNotifier
	notifier Notifier
	bus      *events.EventBus
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	unsubs []func()
}

func NewMonitor(cfg Config, store SessionStore, backend BackendNotifier, notifier Notifier, bus *events.EventBus, logger *slog.Logger) *Monitor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = internal.DefaultInactivityTimeout
	}
	if cfg.LogoutTimeout <= 0 {
		cfg.LogoutTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		timeout:       cfg.Timeout,
		logoutTimeout: cfg.LogoutTimeout,
		state:         StateLoggedOut,
		store:         store,
		backend:       backend,
		notifier:      notifier,
		bus:           bus,
		logger:        logger.With("component", "inactivity"),
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Attach subscribes the monitor to session lifecycle events. Detach happens in Stop.
func (m *Monitor) Attach() {
	if m.bus == nil {
		return
	}
	startUnsub := m.bus.Subscribe(events.EventTypeSessionStarted, func(ctx context.Context, e events.Event) error {
		m.Start()
		return nil
	})
	endUnsub := m.bus.Subscribe(events.EventTypeSessionEnded, func(ctx context.Context, e events.Event) error {
		m.MarkLoggedOut()
		return nil
	})

	m.mu.Lock()
	m.unsubs = append(m.unsubs, startUnsub, endUnsub)
	m.mu.Unlock()
}

// Start arms the idle timer for a fresh session and clears the guard.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx.Err() != nil {
		return
	}
	m.supersedeLocked()
	m.guard = false
	m.state = StateActive
	m.sequence = nil
	m.armLocked()
	m.logger.Debug("idle countdown started", "timeout", m.timeout.String())
}

// Activity resets the idle deadline. It is ignored once the session is logged out and
// reports whether the event counted.
func (m *Monitor) Activity() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive || m.guard {
		return false
	}
	m.armLocked()
	return true
}

// MarkLoggedOut sets the guard so a pending idle timer can no longer start a logout sequence.
func (m *Monitor) MarkLoggedOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supersedeLocked()
	m.guard = true
	m.state = StateLoggedOut
	m.disarmLocked()
}

// SetTimeout changes the idle timeout. It applies from the next activity event.
func (m *Monitor) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.timeout = d
	m.mu.Unlock()
	m.logger.Info("inactivity timeout changed", "timeout", d.String())
}

func (m *Monitor) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AwaitLogout blocks until a running logout sequence has cleared the session.
func (m *Monitor) AwaitLogout(ctx context.Context) error {
	m.mu.Lock()
	seq := m.sequence
	m.mu.Unlock()
	if seq == nil {
		return nil
	}
	select {
	case <-seq:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the timer, aborts a waiting notice and detaches from the event bus.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.disarmLocked()
	m.state = StateLoggedOut
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	m.cancel()
	for _, unsub := range unsubs {
		unsub()
	}
}

func (m *Monitor) armLocked() {
	m.disarmLocked()
	gen := m.generation
	m.timer = time.AfterFunc(m.timeout, func() { m.fire(gen) })
}

func (m *Monitor) disarmLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.generation++
}

// supersedeLocked cancels a running sequence and takes the session away from it.
func (m *Monitor) supersedeLocked() {
	m.sequenceID++
	if m.sequenceStop != nil {
		m.sequenceStop()
		m.sequenceStop = nil
	}
}

func (m *Monitor) owns(id uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sequenceID == id
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.guard || m.state != StateActive {
		m.mu.Unlock()
		return
	}
	m.guard = true
	m.state = StateLoggedOut
	m.timer = nil
	done := make(chan struct{})
	m.sequence = done
	m.sequenceID++
	id := m.sequenceID
	ctx, cancel := context.WithCancel(m.ctx)
	m.sequenceStop = cancel
	m.mu.Unlock()

	defer close(done)
	defer cancel()
	m.expire(ctx, id)
}

func (m *Monitor) expire(ctx context.Context, id uint64) {
	sess, _ := m.store.Current()
	firedAt := m.now()

	m.logger.Info("session idle timeout reached", "user_id", sess.UserID)
	obs.IncAutoLogout()
	if m.bus != nil {
		if err := m.bus.PublishSync(ctx, events.NewSessionExpiredEvent(sess.UserID, ExpiredMessage)); err != nil {
			m.logger.Warn("session expired listeners failed", "error", err)
		}
	}

	acknowledged := true
	if m.notifier != nil {
		if err := m.notifier.NotifyExpired(ctx, ExpiredMessage); err != nil {
			acknowledged = false
			m.logger.Debug("expiry notice abandoned", "error", err)
		}
	}

	if !m.owns(id) {
		m.logger.Info("expiry sequence superseded, leaving session alone", "user_id", sess.UserID)
		return
	}

	if acknowledged && m.backend != nil {
		reason := fmt.Sprintf("Auto logout due to inactivity at %s", firedAt.Format(ReasonTimeLayout))
		callCtx, cancel := internal.DetachedTimeout(ctx, m.logoutTimeout)
		if err := m.backend.NotifyLogout(callCtx, reason); err != nil {
			m.logger.Warn("backend logout notification failed, clearing session anyway",
				"user_id", sess.UserID,
				"error", err)
		}
		cancel()
	}

	if !m.owns(id) {
		return
	}
	m.store.Logout(context.WithoutCancel(ctx), events.EndReasonInactivity)
	m.logger.Info("session logged out after inactivity", "user_id", sess.UserID)
}
