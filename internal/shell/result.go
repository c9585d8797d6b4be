package shell

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/export"
)

type Result interface {
	Print(w io.Writer)
	IsExit() bool
}

type ErrorResult struct {
	Err error
}

func (e ErrorResult) Print(w io.Writer) {
	fmt.Fprintln(w, "ERROR")
	fmt.Fprintln(w, errorText(e.Err))
}

func (e ErrorResult) IsExit() bool { return false }

// errorText is what the operator sees: every field message for validation errors, the
// enumerated failures for batches, and the AppError message otherwise.
func errorText(err error) string {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		return err.Error()
	}
	if appErr.Type == internal.ErrorTypeValidation {
		return appErr.GetDetailedMessage()
	}
	return appErr.Message
}

type ExitResult struct{}

func (ExitResult) Print(io.Writer) {}

func (ExitResult) IsExit() bool { return true }

type EmptyResult struct{}

func (EmptyResult) Print(io.Writer) {}

func (EmptyResult) IsExit() bool { return false }

type MessageResult struct {
	Lines []string
}

func Message(format string, args ...interface{}) MessageResult {
	return MessageResult{Lines: []string{fmt.Sprintf(format, args...)}}
}

func (m MessageResult) Print(w io.Writer) {
	for _, l := range m.Lines {
		fmt.Fprintln(w, l)
	}
}

func (MessageResult) IsExit() bool { return false }

// NoticeResult is printed when a line arrives while the session-expired notice is up.
// The line itself is not run.
type NoticeResult struct {
	Message string
}

func (n NoticeResult) Print(w io.Writer) {
	fmt.Fprintln(w, n.Message)
	fmt.Fprintln(w, "You have been logged out. Use 'login <email>' to continue.")
}

func (NoticeResult) IsExit() bool { return false }

type TableResult struct {
	Table  export.Table
	Footer []string
}

func (t TableResult) Print(w io.Writer) {
	if len(t.Table.Rows) == 0 {
		fmt.Fprintln(w, "no results")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, strings.Join(t.Table.Headers, "\t"))
		for _, row := range t.Table.Rows {
			_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		_ = tw.Flush()
	}
	for _, l := range t.Footer {
		fmt.Fprintln(w, l)
	}
}

func (TableResult) IsExit() bool { return false }

type HelpResult struct{}

func (HelpResult) Print(w io.Writer) {
	fmt.Fprintln(w, "Incubation Console Commands:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Session:")
	fmt.Fprintln(w, "  login <email>                     Log in (password is prompted)")
	fmt.Fprintln(w, "  logout                            Log out")
	fmt.Fprintln(w, "  whoami                            Show the current session")
	fmt.Fprintln(w, "  screens                           List the screens your role may open")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Lists:")
	fmt.Fprintln(w, "  ls <screen> [query]               Show the current page, filtered by query")
	fmt.Fprintln(w, "  page <screen> <n> [size]          Go to page n (1-based); size is 5, 10, 25 or 50")
	fmt.Fprintln(w, "  sort <screen> <column> [asc|desc] Sort by column key")
	fmt.Fprintln(w, "  refresh <screen>                  Fetch the list again")
	fmt.Fprintln(w, "  export <screen> csv|xlsx          Write the filtered rows to a file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Changes:")
	fmt.Fprintln(w, "  add <screen> key=value...         Add a record")
	fmt.Fprintln(w, "  edit <screen> <id> key=value...   Update a record")
	fmt.Fprintln(w, "  rm <screen> <id>                  Delete a record")
	fmt.Fprintln(w, "  link operator|inspector <userId> <id,id,...|->")
	fmt.Fprintln(w, "                                    Set the incubatees linked to a user")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  help                              Show this help message")
	fmt.Fprintln(w, "  exit                              Exit the shell")
}

func (HelpResult) IsExit() bool { return false }
