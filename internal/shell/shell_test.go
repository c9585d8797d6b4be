package shell_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal/apiclient"
	"github.com/frahmantamala/incubation-console/internal/apiclient/apiclienttest"
	"github.com/frahmantamala/incubation-console/internal/association"
	"github.com/frahmantamala/incubation-console/internal/auth"
	"github.com/frahmantamala/incubation-console/internal/bulk"
	"github.com/frahmantamala/incubation-console/internal/core/events"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/inactivity"
	"github.com/frahmantamala/incubation-console/internal/incubation"
	"github.com/frahmantamala/incubation-console/internal/role"
	"github.com/frahmantamala/incubation-console/internal/session"
	"github.com/frahmantamala/incubation-console/internal/shell"
	"github.com/frahmantamala/incubation-console/internal/workspace"
)

func TestShell(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Shell Suite")
}

// scriptedInput replays lines and then reports end of input.
type scriptedInput struct {
	lines   []string
	history []string
}

func (s *scriptedInput) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedInput) PasswordPrompt(string) (string, error) { return "correct_password", nil }

func (s *scriptedInput) AppendHistory(item string) { s.history = append(s.history, item) }

var _ = Describe("Parse", func() {
	It("groups quoted words", func() {
		cmd, err := shell.Parse(`ADD incubations name="Alpha Labs" location=Jakarta`)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd.Name).To(Equal("add"))
		Expect(cmd.Args).To(Equal([]string{"incubations", "name=Alpha Labs", "location=Jakarta"}))
	})

	It("keeps an empty quoted argument", func() {
		cmd, err := shell.Parse(`edit roles 1 description=""`)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd.Args).To(Equal([]string{"roles", "1", "description="}))
	})

	It("rejects an unterminated quote", func() {
		_, err := shell.Parse(`ls "roles`)
		Expect(err).To(MatchError("unterminated quote"))
	})
})

var _ = Describe("Shell", func() {
	var (
		ctx       context.Context
		backend   *apiclienttest.Backend
		store     *session.Store
		bus       *events.EventBus
		board     *inactivity.NoticeBoard
		monitor   *inactivity.Monitor
		sh        *shell.Shell
		exportDir string
		timeout   time.Duration
	)

	run := func(line string) string {
		var out bytes.Buffer
		sh.Execute(ctx, line).Print(&out)
		return out.String()
	}

	BeforeEach(func() {
		timeout = time.Minute
	})

	JustBeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
		store = session.NewStore(bus, logger)

		backend = apiclienttest.NewBackend()
		backend.Handle(http.MethodPost, "/auth/login", apiclienttest.OK(map[string]interface{}{
			"token": "tok", "userId": 1, "roleId": 0, "name": "Root",
		}))
		backend.Handle(http.MethodPost, "/auth/logout", apiclienttest.OK(nil))
		backend.Handle(http.MethodGet, "/incubations", apiclienttest.OK([]map[string]interface{}{
			{"id": 1, "name": "Alpha Labs", "location": "Jakarta", "adminState": 1},
			{"id": 2, "name": "Beta Hub", "location": "Bandung, West Java", "adminState": 1},
		}))
		backend.Handle(http.MethodPost, "/incubations", apiclienttest.OK(nil))
		backend.Handle(http.MethodGet, "/roles", apiclienttest.OK([]map[string]interface{}{
			{"id": "r1", "roleId": 1, "name": "Incubator Admin", "adminState": 1},
			{"id": "r9", "roleId": 9, "name": "Mentor", "adminState": 1},
		}))
		backend.Handle(http.MethodDelete, "/roles/r9", apiclienttest.OK(nil))
		backend.Handle(http.MethodGet, "/users", apiclienttest.OK([]map[string]interface{}{
			{"id": 5, "name": "Ana", "email": "ana@example.com", "roleId": 3},
		}))
		backend.Handle(http.MethodGet, "/associations/operator", apiclienttest.OK([]map[string]interface{}{
			{"id": 10, "userId": "5", "incubateeId": "A", "incubateeName": "Acme"},
		}))
		backend.Handle(http.MethodPost, "/associations/operator", apiclienttest.OK(nil))
		backend.Handle(http.MethodDelete, "/associations/operator/10", apiclienttest.OK(nil))

		client := apiclient.NewClient(apiclient.Config{BaseURL: backend.URL}, store, logger)
		authSvc := auth.NewService(client, store, time.Second, logger)
		board = inactivity.NewNoticeBoard()
		monitor = inactivity.NewMonitor(inactivity.Config{Timeout: timeout}, store, authSvc, board, bus, logger)
		monitor.Attach()
		authSvc.SetGuard(monitor)

		matrix := guard.DefaultMatrix()
		ws := workspace.New(matrix, store, logger)
		ws.Register(
			incubation.NewService(client, logger),
			role.NewService(client, logger),
			association.NewService(client, association.KindOperator, bulk.NewCoordinator(0, logger), logger),
		)
		ws.Attach(bus)

		exportDir = GinkgoT().TempDir()
		sh = shell.New(shell.Deps{
			Auth:      authSvc,
			Sessions:  store,
			Workspace: ws,
			Matrix:    matrix,
			Notices:   board,
			Monitor:   monitor,
			ExportDir: exportDir,
			Logger:    logger,
		})
		sh.SetPasswordPrompt(func(string) (string, error) { return "correct_password", nil })
	})

	AfterEach(func() {
		monitor.Stop()
		sh.Close()
		backend.Close()
	})

	It("prints help and rejects unknown commands", func() {
		Expect(run("help")).To(ContainSubstring("login <email>"))
		Expect(run("frobnicate")).To(ContainSubstring("unknown command: frobnicate"))
	})

	It("refuses screens before login", func() {
		Expect(run("ls incubations")).To(ContainSubstring("Please log in to continue"))
		Expect(backend.CallsTo(http.MethodGet, "/incubations")).To(BeEmpty())
	})

	Context("when logged in", func() {
		JustBeforeEach(func() {
			Expect(run("login root@example.com")).To(ContainSubstring("Logged in as Root"))
		})

		It("lists and filters a screen", func() {
			out := run("ls incubations west java")
			Expect(out).To(ContainSubstring("Beta Hub"))
			Expect(out).NotTo(ContainSubstring("Alpha Labs"))
			Expect(out).To(ContainSubstring("page 1/1, 1 of 2 rows"))
		})

		It("rejects page sizes outside the allowed set", func() {
			Expect(run("page incubations 1 7")).To(ContainSubstring("ERROR"))
		})

		It("adds a record from key=value pairs", func() {
			Expect(run(`add incubations name="Gamma Space" location=Surabaya`)).To(ContainSubstring("Record added."))
			calls := backend.CallsTo(http.MethodPost, "/incubations")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Body).To(ContainSubstring(`"name":"Gamma Space"`))
		})

		It("refuses to delete a built-in role without calling the backend", func() {
			Expect(run("rm roles r1")).To(ContainSubstring("cannot be deleted"))
			Expect(backend.CallsTo(http.MethodDelete, "/roles/r1")).To(BeEmpty())

			Expect(run("rm roles r9")).To(ContainSubstring("Record r9 deleted."))
		})

		It("reconciles association links", func() {
			Expect(run("link operator 5 C")).To(ContainSubstring("Links of user 5 updated."))
			Expect(backend.CallsTo(http.MethodPost, "/associations/operator")).To(HaveLen(1))
			Expect(backend.CallsTo(http.MethodDelete, "/associations/operator/10")).To(HaveLen(1))
		})

		It("exports the filtered rows", func() {
			run("ls incubations alpha")
			out := run("export incubations csv")
			Expect(out).To(ContainSubstring("Wrote 1 rows"))

			name := "incubations_" + time.Now().Format("2006-01-02") + ".csv"
			data, err := os.ReadFile(filepath.Join(exportDir, name))
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(data), "\n")).To(BeNumerically(">=", 2))
			Expect(string(data)).To(ContainSubstring("Alpha Labs"))
		})

		It("logs out", func() {
			Expect(run("logout")).To(ContainSubstring("Logged out."))
			Expect(store.IsAuthenticated()).To(BeFalse())
			Expect(run("whoami")).To(ContainSubstring("Not logged in."))
		})
	})

	Context("when the session goes idle", func() {
		BeforeEach(func() {
			timeout = 50 * time.Millisecond
		})

		It("consumes the next line as the acknowledgement", func() {
			Expect(run("login root@example.com")).To(ContainSubstring("Logged in"))
			Eventually(func() bool {
				_, ok := board.Pending()
				return ok
			}).Should(BeTrue())

			out := run("ls incubations")
			Expect(out).To(ContainSubstring(inactivity.ExpiredMessage))
			Expect(store.IsAuthenticated()).To(BeFalse())
			Expect(backend.CallsTo(http.MethodGet, "/incubations")).To(BeEmpty())
			Expect(backend.CallsTo(http.MethodPost, "/auth/logout")).To(HaveLen(1))
		})
	})

	It("runs a scripted session until end of input", func() {
		in := &scriptedInput{lines: []string{"login root@example.com", "", "whoami", "exit", "ls incubations"}}
		var out bytes.Buffer

		Expect(sh.Run(ctx, in, &out)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("user:    Root (id 1)"))
		Expect(in.history).To(Equal([]string{"login root@example.com", "whoami", "exit"}))
		Expect(backend.CallsTo(http.MethodGet, "/incubations")).To(BeEmpty())
	})
})
