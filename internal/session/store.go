package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/core/events"
)

// Store holds the single session of one console tab. It never talks to the network.
type Store struct {
	mu      sync.RWMutex
	current *Session
	bus     *events.EventBus
	logger  *slog.Logger
	now     func() time.Time
}

func NewStore(bus *events.EventBus, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{bus: bus, logger: logger, now: time.Now}
}

// Login establishes sess, replacing any previous session.
func (s *Store) Login(ctx context.Context, sess Session) error {
	if strings.TrimSpace(sess.Token) == "" {
		return internal.NewValidationFieldError("token", "token is required", internal.ErrCodeValidationFailed)
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = s.now()
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = tokenExpiry(sess.Token)
	}

	s.mu.Lock()
	replaced := s.current != nil
	s.current = &sess
	s.mu.Unlock()

	s.logger.Info("session established",
		"user_id", sess.UserID,
		"role_id", int(sess.RoleID),
		"tenant_id", sess.Tenant(),
		"replaced", replaced)

	if s.bus != nil {
		return s.bus.PublishSync(ctx, events.NewSessionStartedEvent(sess.UserID, int(sess.RoleID)))
	}
	return nil
}

// Logout clears the session and reports whether there was one. A second call is a no-op.
func (s *Store) Logout(ctx context.Context, reason string) bool {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev == nil {
		return false
	}

	s.logger.Info("session cleared", "user_id", prev.UserID, "reason", reason)

	if s.bus != nil {
		if err := s.bus.PublishSync(ctx, events.NewSessionEndedEvent(prev.UserID, reason)); err != nil {
			s.logger.Warn("session end listeners failed", "error", err)
		}
	}
	return true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Token != ""
}

// Current returns a copy of the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}
