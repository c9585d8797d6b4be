package guard

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/inactivity"
	"github.com/frahmantamala/incubation-console/internal/session"
	"github.com/frahmantamala/incubation-console/internal/transport"
)

type Verdict string

const (
	Admit         Verdict = "admit"
	RedirectLogin Verdict = "redirect_login"
	RedirectHome  Verdict = "redirect_default"
)

type Decision struct {
	Verdict  Verdict
	Redirect string
	Err      error
}

// Check decides whether the holder of sess may open path. It is a pure function of its
// inputs and is evaluated again on every navigation.
func (m *Matrix) Check(sess session.Session, authenticated bool, path string) Decision {
	screen, known := m.Screen(path)
	if known && screen.Public() {
		return Decision{Verdict: Admit}
	}
	if !authenticated || sess.Token == "" {
		return Decision{Verdict: RedirectLogin, Redirect: ScreenLogin, Err: internal.ErrNotAuthenticated}
	}
	if !m.Allows(path, sess.RoleID) {
		return Decision{Verdict: RedirectHome, Redirect: m.DefaultScreen(sess.RoleID), Err: internal.ErrRoleNotAllowed}
	}
	return Decision{Verdict: Admit}
}

// NoticeSource exposes a pending session-expired notice.
type NoticeSource interface {
	Pending() (inactivity.Notice, bool)
}

// Guard applies the matrix to console HTTP routes.
type Guard struct {
	*transport.BaseHandler
	matrix   *Matrix
	sessions session.Reader
	notices  NoticeSource
}

func New(matrix *Matrix, sessions session.Reader, notices NoticeSource, logger *slog.Logger) *Guard {
	return &Guard{
		BaseHandler: transport.NewBaseHandler(logger),
		matrix:      matrix,
		sessions:    sessions,
		notices:     notices,
	}
}

func (g *Guard) Matrix() *Matrix { return g.matrix }

type denial struct {
	Error    *internal.AppError `json:"error"`
	Redirect string             `json:"redirect"`
	Notice   *inactivity.Notice `json:"notice,omitempty"`
}

// Require gates the wrapped routes behind screen path.
func (g *Guard) Require(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.notices != nil {
				if notice, ok := g.notices.Pending(); ok {
					g.deny(w, r, path, http.StatusUnauthorized, denial{
						Error:    internal.ErrSessionExpired,
						Redirect: ScreenLogin,
						Notice:   &notice,
					})
					return
				}
			}

			sess, ok := g.sessions.Current()
			decision := g.matrix.Check(sess, ok, path)
			switch decision.Verdict {
			case RedirectLogin:
				g.deny(w, r, path, http.StatusUnauthorized, denial{Error: internal.ErrNotAuthenticated, Redirect: decision.Redirect})
				return
			case RedirectHome:
				g.Logger.WarnContext(r.Context(), "access denied: role not allowed on screen",
					"user_id", sess.UserID,
					"role_id", int(sess.RoleID),
					"screen", path)
				g.deny(w, r, path, http.StatusForbidden, denial{Error: internal.ErrRoleNotAllowed, Redirect: decision.Redirect})
				return
			}
			ctx := internal.ContextWithOperator(r.Context(), sess.UserID, int(sess.RoleID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, path string, status int, body denial) {
	g.Logger.DebugContext(r.Context(), "navigation redirected", "screen", path, "redirect", body.Redirect, "status", status)
	g.WriteJSON(w, status, body)
}
