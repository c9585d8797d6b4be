package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/apiclient"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/user"
	"github.com/frahmantamala/incubation-console/internal/core/events"
	"github.com/frahmantamala/incubation-console/internal/session"
)

// Service logs the console in and out against the backend and keeps the session store in step.
type Service struct {
	client        *apiclient.Client
	store         *session.Store
	logger        *slog.Logger
	logoutTimeout time.Duration
	now           func() time.Time

	mu    sync.RWMutex
	guard Guard
}

// NewService creates the auth service. logoutTimeout bounds the best-effort backend
// notification on manual logout.
func NewService(client *apiclient.Client, store *session.Store, logoutTimeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if logoutTimeout <= 0 {
		logoutTimeout = 5 * time.Second
	}
	return &Service{
		client:        client,
		store:         store,
		logger:        logger.With("component", "auth"),
		logoutTimeout: logoutTimeout,
		now:           time.Now,
	}
}

// SetGuard wires the inactivity monitor in. The monitor needs the service as its backend
// notifier, so it cannot be passed to NewService.
func (s *Service) SetGuard(g Guard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard = g
}

// Login validates f, exchanges it for a token and establishes the session.
func (s *Service) Login(ctx context.Context, f LoginForm) (session.Session, error) {
	if err := f.Validate(); err != nil {
		return session.Session{}, err
	}

	var result dm.LoginResult
	err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Form:   f.values(),
		Module: Module,
		Action: "Login",
	}, &result)
	if err != nil {
		s.logger.Warn("login failed", "email", f.Email, "error", err)
		return session.Session{}, err
	}
	if result.Token == "" {
		return session.Session{}, internal.NewApplicationError("The server did not return a session token.", internal.ErrCodeMalformedResponse)
	}

	sess := session.Session{
		Token:       result.Token,
		UserID:      result.UserID.String(),
		RoleID:      result.RoleID,
		TenantID:    result.TenantID,
		DisplayName: result.Name,
	}
	if err := s.store.Login(ctx, sess); err != nil {
		return session.Session{}, err
	}

	current, _ := s.store.Current()
	return current, nil
}

// Logout ends the session on operator request. The guard is set first; the backend is then told
// on a best-effort basis and the session is cleared whatever the outcome.
func (s *Service) Logout(ctx context.Context) bool {
	sess, ok := s.store.Current()
	if !ok {
		return false
	}

	s.mu.RLock()
	guard := s.guard
	s.mu.RUnlock()
	if guard != nil {
		guard.MarkLoggedOut()
	}

	reason := fmt.Sprintf("Manual logout at %s", s.now().Format(ManualReasonLayout))
	callCtx, cancel := internal.DetachedTimeout(ctx, s.logoutTimeout)
	if err := s.NotifyLogout(callCtx, reason); err != nil {
		s.logger.Warn("backend logout notification failed, clearing session anyway",
			"user_id", sess.UserID,
			"error", err)
	}
	cancel()

	return s.store.Logout(context.WithoutCancel(ctx), events.EndReasonManual)
}

// NotifyLogout tells the backend the current session ended and why.
func (s *Service) NotifyLogout(ctx context.Context, reason string) error {
	return s.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   logoutPath,
		Body:   logoutRequest{Reason: reason},
		Module: Module,
		Action: "Logout",
	}, nil)
}
