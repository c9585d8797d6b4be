// Package workspace holds the management screens of one console session and opens them
// through the route guard.
package workspace

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/core/events"
	"github.com/frahmantamala/incubation-console/internal/crud"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/session"
)

const ErrCodeUnknownScreen internal.ErrorCode = "UNKNOWN_SCREEN"

type Workspace struct {
	mu      sync.RWMutex
	screens map[string]crud.Screen
	matrix  *guard.Matrix
	session session.Reader
	logger  *slog.Logger
	unsub   func()
}

func New(matrix *guard.Matrix, sess session.Reader, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		screens: make(map[string]crud.Screen),
		matrix:  matrix,
		session: sess,
		logger:  logger.With("component", "workspace"),
	}
}

// Register adds screens under their names. A later screen with the same name replaces the earlier one.
func (w *Workspace) Register(screens ...crud.Screen) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range screens {
		w.screens[s.Name()] = s
	}
}

// Names lists the registered screens alphabetically.
func (w *Workspace) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.screens))
	for name := range w.screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Visible lists the screens the current session may open.
func (w *Workspace) Visible() []string {
	sess, ok := w.session.Current()
	var out []string
	for _, name := range w.Names() {
		s, _ := w.lookup(name)
		if w.matrix.Check(sess, ok, s.Path()).Verdict == guard.Admit {
			out = append(out, name)
		}
	}
	return out
}

func (w *Workspace) lookup(name string) (crud.Screen, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.screens[name]
	return s, ok
}

// Open returns the named screen after running the route guard for its path. The check
// is repeated on every call.
func (w *Workspace) Open(name string) (crud.Screen, error) {
	s, ok := w.lookup(name)
	if !ok {
		return nil, internal.NewNotFoundError("Unknown screen "+name, ErrCodeUnknownScreen)
	}
	sess, authenticated := w.session.Current()
	decision := w.matrix.Check(sess, authenticated, s.Path())
	if decision.Verdict != guard.Admit {
		w.logger.Debug("screen refused", "screen", name, "verdict", decision.Verdict, "redirect", decision.Redirect)
		return nil, decision.Err
	}
	return s, nil
}

// UnmountAll discards every screen's state and cancels their in-flight loads.
func (w *Workspace) UnmountAll() {
	w.mu.RLock()
	screens := make([]crud.Screen, 0, len(w.screens))
	for _, s := range w.screens {
		screens = append(screens, s)
	}
	w.mu.RUnlock()

	for _, s := range screens {
		s.Unmount()
	}
}

// Attach unmounts all screens whenever the session ends, so nothing of the previous
// operator's data survives into the next login.
func (w *Workspace) Attach(bus *events.EventBus) {
	if bus == nil {
		return
	}
	unsub := bus.Subscribe(events.EventTypeSessionEnded, func(ctx context.Context, e events.Event) error {
		w.UnmountAll()
		w.logger.Debug("screens unmounted", "event_id", e.EventID())
		return nil
	})
	w.mu.Lock()
	w.unsub = unsub
	w.mu.Unlock()
}

func (w *Workspace) Detach() {
	w.mu.Lock()
	unsub := w.unsub
	w.unsub = nil
	w.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
