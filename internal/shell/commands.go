package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/frahmantamala/incubation-console/internal/association"
	"github.com/frahmantamala/incubation-console/internal/auth"
	"github.com/frahmantamala/incubation-console/internal/crud"
	"github.com/frahmantamala/incubation-console/internal/export"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

func (s *Shell) login(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 1); err != nil {
		return ErrorResult{Err: err}
	}
	password, err := s.readPassword()
	if err != nil {
		return ErrorResult{Err: err}
	}

	sess, err := s.auth.Login(ctx, auth.LoginForm{Email: cmd.Args[0], Password: password})
	if err != nil {
		return ErrorResult{Err: err}
	}
	return MessageResult{Lines: []string{
		fmt.Sprintf("Logged in as %s (%s).", displayName(sess.DisplayName, sess.UserID), sess.RoleID),
		fmt.Sprintf("Home screen: %s", s.matrix.DefaultScreen(sess.RoleID)),
	}}
}

func (s *Shell) logout(ctx context.Context) Result {
	if !s.auth.Logout(ctx) {
		return Message("Not logged in.")
	}
	return Message("Logged out.")
}

func (s *Shell) whoami() Result {
	sess, ok := s.sessions.Current()
	if !ok {
		return Message("Not logged in.")
	}
	lines := []string{
		fmt.Sprintf("user:    %s (id %s)", displayName(sess.DisplayName, sess.UserID), sess.UserID),
		fmt.Sprintf("role:    %d %s", int(sess.RoleID), sess.RoleID),
		fmt.Sprintf("tenant:  %s", orDash(sess.Tenant())),
		fmt.Sprintf("since:   %s", sess.StartedAt.Format("2006-01-02 15:04:05")),
	}
	if !sess.ExpiresAt.IsZero() {
		lines = append(lines, fmt.Sprintf("expires: %s", sess.ExpiresAt.Format("2006-01-02 15:04:05")))
	}
	return MessageResult{Lines: lines}
}

func (s *Shell) screens() Result {
	visible := s.ws.Visible()
	if len(visible) == 0 {
		return Message("No screens available. Log in first.")
	}
	t := export.Table{Headers: []string{"SCREEN", "PATH", "STATUS"}}
	for _, name := range visible {
		scr, err := s.ws.Open(name)
		if err != nil {
			continue
		}
		t.Rows = append(t.Rows, []string{name, scr.Path(), string(scr.Status())})
	}
	return TableResult{Table: t}
}

// mounted opens the screen through the guard and loads it if it was never loaded. A load
// failure is not returned; it shows up in the footer like an error banner.
func (s *Shell) mounted(ctx context.Context, name string) (crud.Screen, error) {
	scr, err := s.ws.Open(name)
	if err != nil {
		return nil, err
	}
	if err := scr.Mount(ctx); err != nil {
		s.logger.Debug("screen load failed", "screen", name, "error", err)
	}
	return scr, nil
}

func (s *Shell) pageResult(scr crud.Screen) Result {
	sum := scr.Summary()
	pages := sum.TotalPages
	if pages == 0 {
		pages = 1
	}
	footer := []string{fmt.Sprintf("page %d/%d, %d of %d rows, %d per page", sum.Page+1, pages, sum.TotalItems, sum.RawCount, sum.PageSize)}
	if sum.Query != "" {
		footer = append(footer, fmt.Sprintf("filter: %q", sum.Query))
	}
	if sum.Sort != "" {
		footer = append(footer, fmt.Sprintf("sort: %s %s", sum.Sort, sum.Direction))
	}
	if sum.Error != "" {
		footer = append(footer, "error: "+sum.Error)
	}
	return TableResult{Table: scr.PageTable(), Footer: footer}
}

func (s *Shell) list(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 1); err != nil {
		return ErrorResult{Err: err}
	}
	scr, err := s.mounted(ctx, cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	scr.SetQuery(strings.Join(cmd.Args[1:], " "))
	return s.pageResult(scr)
}

func (s *Shell) page(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 2); err != nil {
		return ErrorResult{Err: err}
	}
	n, err := strconv.Atoi(cmd.Args[1])
	if err != nil || n < 1 {
		return ErrorResult{Err: fmt.Errorf("page must be a number from 1")}
	}
	scr, err := s.mounted(ctx, cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	if len(cmd.Args) > 2 {
		size, err := strconv.Atoi(cmd.Args[2])
		if err != nil {
			return ErrorResult{Err: fmt.Errorf("page size must be a number")}
		}
		if err := scr.SetPageSize(size); err != nil {
			return ErrorResult{Err: err}
		}
	}
	scr.SetPage(n - 1)
	return s.pageResult(scr)
}

func (s *Shell) sort(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 2); err != nil {
		return ErrorResult{Err: err}
	}
	dir := listing.SortAsc
	if len(cmd.Args) > 2 {
		dir = listing.SortDirection(strings.ToLower(cmd.Args[2]))
	}
	scr, err := s.mounted(ctx, cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	if err := scr.SetSort(cmd.Args[1], dir); err != nil {
		return ErrorResult{Err: err}
	}
	return s.pageResult(scr)
}

func (s *Shell) refresh(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 1); err != nil {
		return ErrorResult{Err: err}
	}
	scr, err := s.ws.Open(cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	if err := scr.Load(ctx); err != nil {
		s.logger.Debug("refresh failed", "screen", cmd.Args[0], "error", err)
	}
	return s.pageResult(scr)
}

func (s *Shell) remove(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 2); err != nil {
		return ErrorResult{Err: err}
	}
	scr, err := s.mounted(ctx, cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	if err := scr.Delete(ctx, cmd.Args[1]); err != nil {
		return ErrorResult{Err: err}
	}
	return Message("Record %s deleted.", cmd.Args[1])
}

func (s *Shell) add(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 2); err != nil {
		return ErrorResult{Err: err}
	}
	scr, err := s.mounted(ctx, cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	if err := scr.CreateFrom(ctx, cmd.Args[1:]); err != nil {
		return ErrorResult{Err: err}
	}
	return Message("Record added.")
}

func (s *Shell) edit(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 3); err != nil {
		return ErrorResult{Err: err}
	}
	scr, err := s.mounted(ctx, cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	if err := scr.UpdateFrom(ctx, cmd.Args[1], cmd.Args[2:]); err != nil {
		return ErrorResult{Err: err}
	}
	return Message("Record %s updated.", cmd.Args[1])
}

// link sets the full incubatee set of one user; "-" unlinks everything.
func (s *Shell) link(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 3); err != nil {
		return ErrorResult{Err: err}
	}
	kind, err := association.ParseKind(cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}
	ids := strings.Join(cmd.Args[2:], ",")
	if ids == "-" {
		ids = ""
	}
	scr, err := s.mounted(ctx, association.NewDescriptor(kind).Name)
	if err != nil {
		return ErrorResult{Err: err}
	}
	if err := scr.UpdateFrom(ctx, cmd.Args[1], []string{"incubatees=" + ids}); err != nil {
		return ErrorResult{Err: err}
	}
	return Message("Links of user %s updated.", cmd.Args[1])
}

func (s *Shell) export(ctx context.Context, cmd *Command) Result {
	if err := ValidateArgs(cmd, 1); err != nil {
		return ErrorResult{Err: err}
	}
	format := ""
	if len(cmd.Args) > 1 {
		format = cmd.Args[1]
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return ErrorResult{Err: err}
	}
	scr, err := s.mounted(ctx, cmd.Args[0])
	if err != nil {
		return ErrorResult{Err: err}
	}

	t := scr.Table()
	data, err := export.Render(t, f, scr.Name())
	if err != nil {
		return ErrorResult{Err: err}
	}
	path := filepath.Join(s.exportDir, export.Filename(scr.Name(), f, s.now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ErrorResult{Err: fmt.Errorf("write export: %w", err)}
	}
	s.logger.Info("export written", "screen", scr.Name(), "format", string(f), "rows", len(t.Rows), "path", path)
	return Message("Wrote %d rows to %s", len(t.Rows), path)
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
