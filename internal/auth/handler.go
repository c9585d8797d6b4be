package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/incubation-console/internal/core/common/form"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/inactivity"
	"github.com/frahmantamala/incubation-console/internal/session"
	"github.com/frahmantamala/incubation-console/internal/transport"
)

// Notices is the session-expired notice board the monitor posts to.
type Notices interface {
	Pending() (inactivity.Notice, bool)
	Acknowledge() bool
}

// Monitor is the part of the inactivity monitor the handler reports on.
type Monitor interface {
	State() inactivity.State
	AwaitLogout(ctx context.Context) error
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	sessions session.Reader
	notices  Notices
	monitor  Monitor
	matrix   *guard.Matrix
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, sessions session.Reader, notices Notices, monitor Monitor, matrix *guard.Matrix) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
		sessions:    sessions,
		notices:     notices,
		monitor:     monitor,
		matrix:      matrix,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var f LoginForm
	if err := form.FromRequest(r, &f); err != nil {
		h.WriteAppError(w, err)
		return
	}

	sess, err := h.Service.Login(r.Context(), f)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.Logger.InfoContext(r.Context(), "operator logged in", "user_id", sess.UserID, "role_id", int(sess.RoleID))
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Logged in",
		"session":  sess,
		"redirect": h.matrix.DefaultScreen(sess.RoleID),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ended := h.Service.Logout(r.Context())
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"loggedOut": ended,
		"redirect":  guard.ScreenLogin,
	})
}

// Session reports the session, the monitor state and any notice waiting for acknowledgement.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.view())
}

// Acknowledge dismisses the session-expired notice and waits for the logout it releases.
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	acknowledged := h.notices.Acknowledge()
	if acknowledged {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := h.monitor.AwaitLogout(ctx); err != nil {
			h.Logger.WarnContext(r.Context(), "logout after acknowledgement still running", "error", err)
		}
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"acknowledged": acknowledged,
		"redirect":     guard.ScreenLogin,
		"session":      h.view(),
	})
}

// Dashboard lists the screens the current role may open.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Current()
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session":    sess,
		"navigation": h.matrix.Navigation(sess.RoleID),
	})
}

func (h *Handler) view() SessionView {
	v := SessionView{State: h.monitor.State().String()}
	if sess, ok := h.sessions.Current(); ok {
		v.Authenticated = true
		v.Session = &sess
		v.Home = h.matrix.DefaultScreen(sess.RoleID)
	}
	if n, ok := h.notices.Pending(); ok {
		v.Notice = &NoticeView{Message: n.Message, IssuedAt: n.IssuedAt.Format(time.RFC3339)}
	}
	return v
}
