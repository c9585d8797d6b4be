package auth

import (
	"context"

	"github.com/frahmantamala/incubation-console/internal/session"
)

const (
	Module = "Login"

	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

// ManualReasonLayout matches the timestamp format of the automatic logout reason.
const ManualReasonLayout = "1/2/2006, 3:04:05 PM"

// Guard is told about a manual logout before the session is cleared, so an idle
// timer racing with it cannot start a second logout sequence.
type Guard interface {
	MarkLoggedOut()
}

// ServiceAPI is what the HTTP handler and the shell need from the auth service.
type ServiceAPI interface {
	Login(ctx context.Context, f LoginForm) (session.Session, error)
	Logout(ctx context.Context) bool
	NotifyLogout(ctx context.Context, reason string) error
}

// SessionView is the session as the console reports it.
type SessionView struct {
	Authenticated bool             `json:"authenticated"`
	State         string           `json:"state"`
	Session       *session.Session `json:"session,omitempty"`
	Notice        *NoticeView      `json:"notice,omitempty"`
	Home          string           `json:"home,omitempty"`
}

type NoticeView struct {
	Message  string `json:"message"`
	IssuedAt string `json:"issuedAt"`
}
