// Package shell is the interactive terminal surface of the console. It plays the part of a
// browser tab: one session, one inactivity monitor and one workspace of screens.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"

	"github.com/frahmantamala/incubation-console/internal/auth"
	"github.com/frahmantamala/incubation-console/internal/core/events"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/inactivity"
	"github.com/frahmantamala/incubation-console/internal/session"
	"github.com/frahmantamala/incubation-console/internal/workspace"
)

const Prompt = "console> "

type Authenticator interface {
	Login(ctx context.Context, f auth.LoginForm) (session.Session, error)
	Logout(ctx context.Context) bool
}

type Notices interface {
	Pending() (inactivity.Notice, bool)
	Acknowledge() bool
}

type Monitor interface {
	Activity() bool
	AwaitLogout(ctx context.Context) error
}

// Input is the line editor. *liner.State satisfies it.
type Input interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
}

type Deps struct {
	Auth      Authenticator
	Sessions  session.Reader
	Workspace *workspace.Workspace
	Matrix    *guard.Matrix
	Notices   Notices
	Monitor   Monitor
	ExportDir string
	Logger    *slog.Logger
}

type Shell struct {
	auth      Authenticator
	sessions  session.Reader
	ws        *workspace.Workspace
	matrix    *guard.Matrix
	notices   Notices
	monitor   Monitor
	exportDir string
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	password func(prompt string) (string, error)
	unsub    func()
}

func New(deps Deps) *Shell {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dir := deps.ExportDir
	if dir == "" {
		dir = "."
	}
	return &Shell{
		auth:      deps.Auth,
		sessions:  deps.Sessions,
		ws:        deps.Workspace,
		matrix:    deps.Matrix,
		notices:   deps.Notices,
		monitor:   deps.Monitor,
		exportDir: dir,
		logger:    logger.With("component", "shell"),
		now:       time.Now,
	}
}

// SetPasswordPrompt sets how login asks for the password.
func (s *Shell) SetPasswordPrompt(fn func(prompt string) (string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = fn
}

func (s *Shell) readPassword() (string, error) {
	s.mu.Lock()
	fn := s.password
	s.mu.Unlock()
	if fn == nil {
		return "", errors.New("no terminal to read the password from")
	}
	return fn("Password: ")
}

// Attach prints the session-expired notice to out as soon as the idle timer fires.
func (s *Shell) Attach(bus *events.EventBus, out io.Writer) {
	if bus == nil {
		return
	}
	unsub := bus.Subscribe(events.EventTypeSessionExpired, func(ctx context.Context, e events.Event) error {
		msg := inactivity.ExpiredMessage
		if ev, ok := e.(*events.SessionExpiredEvent); ok && ev.Message != "" {
			msg = ev.Message
		}
		fmt.Fprintf(out, "\n*** %s ***\nPress Enter to acknowledge.\n", msg)
		return nil
	})
	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
}

func (s *Shell) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Execute runs one entered line. While the expiry notice is pending, the line only
// acknowledges it and waits for the logout to finish.
func (s *Shell) Execute(ctx context.Context, line string) Result {
	if s.notices != nil {
		if notice, ok := s.notices.Pending(); ok {
			if s.notices.Acknowledge() && s.monitor != nil {
				waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				if err := s.monitor.AwaitLogout(waitCtx); err != nil {
					s.logger.Warn("logout after acknowledgement still running", "error", err)
				}
				cancel()
			}
			return NoticeResult{Message: notice.Message}
		}
	}

	if strings.TrimSpace(line) == "" {
		return EmptyResult{}
	}
	if s.monitor != nil {
		s.monitor.Activity()
	}

	cmd, err := Parse(line)
	if err != nil {
		return ErrorResult{Err: err}
	}

	switch cmd.Name {
	case "help", "?":
		return HelpResult{}
	case "exit", "quit":
		return ExitResult{}
	case "login":
		return s.login(ctx, cmd)
	case "logout":
		return s.logout(ctx)
	case "whoami":
		return s.whoami()
	case "screens":
		return s.screens()
	case "ls":
		return s.list(ctx, cmd)
	case "page":
		return s.page(ctx, cmd)
	case "sort":
		return s.sort(ctx, cmd)
	case "refresh":
		return s.refresh(ctx, cmd)
	case "rm":
		return s.remove(ctx, cmd)
	case "add":
		return s.add(ctx, cmd)
	case "edit":
		return s.edit(ctx, cmd)
	case "link":
		return s.link(ctx, cmd)
	case "export":
		return s.export(ctx, cmd)
	default:
		return ErrorResult{Err: fmt.Errorf("unknown command: %s (try 'help')", cmd.Name)}
	}
}

// Run reads lines from in until exit, end of input or an aborted prompt.
func (s *Shell) Run(ctx context.Context, in Input, out io.Writer) error {
	s.SetPasswordPrompt(in.PasswordPrompt)
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := in.Prompt(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) != "" {
			in.AppendHistory(line)
		}

		result := s.Execute(ctx, line)
		if result.IsExit() {
			return nil
		}
		result.Print(out)
	}
}

// NewLiner opens the terminal line editor with completion for commands and screen names.
func NewLiner(ws *workspace.Workspace) *liner.State {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	l.SetCompleter(func(line string) []string {
		return complete(line, ws.Names())
	})
	return l
}

var commandNames = []string{
	"add", "edit", "exit", "export", "help", "link", "login", "logout",
	"ls", "page", "refresh", "rm", "screens", "sort", "whoami",
}

func complete(line string, screens []string) []string {
	fields := strings.Fields(line)
	var out []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(line, " ")):
		prefix := ""
		if len(fields) == 1 {
			prefix = fields[0]
		}
		for _, c := range commandNames {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
	case len(fields) == 1 || (len(fields) == 2 && !strings.HasSuffix(line, " ")):
		prefix := ""
		if len(fields) == 2 {
			prefix = fields[1]
		}
		for _, name := range screens {
			if strings.HasPrefix(name, prefix) {
				out = append(out, fields[0]+" "+name)
			}
		}
	}
	return out
}
