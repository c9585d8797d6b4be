package inactivity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal/core/events"
	"github.com/frahmantamala/incubation-console/internal/inactivity"
	"github.com/frahmantamala/incubation-console/internal/session"
)

func TestInactivity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Inactivity Monitor Suite")
}

type fakeBackend struct {
	mu      sync.Mutex
	reasons []string
	err     error
}

func (f *fakeBackend) NotifyLogout(ctx context.Context, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
	return f.err
}

func (f *fakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reasons)
}

func (f *fakeBackend) Reasons() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reasons...)
}

var _ = Describe("Monitor", func() {
	const timeout = 80 * time.Millisecond

	var (
		logger  *slog.Logger
		bus     *events.EventBus
		store   *session.Store
		backend *fakeBackend
		board   *inactivity.NoticeBoard
		monitor *inactivity.Monitor
		ctx     context.Context
	)

	login := func() {
		Expect(store.Login(ctx, session.Session{Token: "tok", UserID: "u-1"})).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
		store = session.NewStore(bus, logger)
		backend = &fakeBackend{}
		board = inactivity.NewNoticeBoard()
		monitor = inactivity.NewMonitor(inactivity.Config{Timeout: timeout, LogoutTimeout: time.Second},
			store, backend, board, bus, logger)
		monitor.Attach()
	})

	AfterEach(func() {
		monitor.Stop()
	})

	It("starts counting on login", func() {
		Expect(monitor.State()).To(Equal(inactivity.StateLoggedOut))
		login()
		Expect(monitor.State()).To(Equal(inactivity.StateActive))
	})

	It("never logs out while activity keeps arriving within the timeout", func() {
		login()
		for i := 0; i < 8; i++ {
			time.Sleep(timeout / 3)
			Expect(monitor.Activity()).To(BeTrue())
		}
		Expect(monitor.State()).To(Equal(inactivity.StateActive))
		Expect(store.IsAuthenticated()).To(BeTrue())
		_, pending := board.Pending()
		Expect(pending).To(BeFalse())
	})

	It("shows the notice, then logs out once after acknowledgement", func() {
		login()

		Eventually(func() bool {
			_, ok := board.Pending()
			return ok
		}, time.Second, 5*time.Millisecond).Should(BeTrue())
		Expect(monitor.State()).To(Equal(inactivity.StateLoggedOut))

		// session is kept until the operator dismisses the notice
		Expect(store.IsAuthenticated()).To(BeTrue())
		Expect(backend.Calls()).To(Equal(0))

		Expect(board.Acknowledge()).To(BeTrue())
		Expect(monitor.AwaitLogout(ctx)).To(Succeed())
		Expect(store.IsAuthenticated()).To(BeFalse())

		Consistently(backend.Calls, 3*timeout, 10*time.Millisecond).Should(Equal(1))
		Expect(backend.Reasons()[0]).To(HavePrefix("Auto logout due to inactivity at "))
	})

	It("ignores activity after the timeout fired", func() {
		login()
		Eventually(monitor.State, time.Second, 5*time.Millisecond).Should(Equal(inactivity.StateLoggedOut))
		Expect(monitor.Activity()).To(BeFalse())
		Expect(board.Acknowledge()).To(BeTrue())
		Expect(monitor.AwaitLogout(ctx)).To(Succeed())
	})

	It("clears the session even when the backend notification fails", func() {
		backend.err = errors.New("offline")
		login()
		Eventually(func() bool {
			_, ok := board.Pending()
			return ok
		}, time.Second, 5*time.Millisecond).Should(BeTrue())
		board.Acknowledge()

		Expect(monitor.AwaitLogout(ctx)).To(Succeed())
		Expect(store.IsAuthenticated()).To(BeFalse())
		Expect(backend.Calls()).To(Equal(1))
	})

	It("does not fire after a manual logout", func() {
		login()
		time.Sleep(timeout / 2)
		Expect(store.Logout(ctx, events.EndReasonManual)).To(BeTrue())

		Consistently(func() bool {
			_, ok := board.Pending()
			return ok
		}, 3*timeout, 10*time.Millisecond).Should(BeFalse())
		Expect(backend.Calls()).To(Equal(0))
		Expect(monitor.Activity()).To(BeFalse())
	})

	It("publishes session.expired when the timer fires", func() {
		expired := make(chan string, 1)
		bus.Subscribe(events.EventTypeSessionExpired, func(ctx context.Context, e events.Event) error {
			expired <- e.(*events.SessionExpiredEvent).UserID
			return nil
		})
		login()
		Eventually(expired, time.Second).Should(Receive(Equal("u-1")))
		board.Acknowledge()
	})

	It("rearms on a new login after an automatic logout", func() {
		login()
		Eventually(func() bool {
			_, ok := board.Pending()
			return ok
		}, time.Second, 5*time.Millisecond).Should(BeTrue())
		board.Acknowledge()
		Expect(monitor.AwaitLogout(ctx)).To(Succeed())

		login()
		Expect(monitor.State()).To(Equal(inactivity.StateActive))
		Expect(monitor.Activity()).To(BeTrue())
	})

	It("leaves a new session alone when the previous notice is dismissed late", func() {
		login()
		Eventually(func() bool {
			_, ok := board.Pending()
			return ok
		}, time.Second, 5*time.Millisecond).Should(BeTrue())

		Expect(store.Login(ctx, session.Session{Token: "tok-2", UserID: "u-2"})).To(Succeed())
		Expect(monitor.State()).To(Equal(inactivity.StateActive))
		Eventually(func() bool {
			_, ok := board.Pending()
			return ok
		}, time.Second, 5*time.Millisecond).Should(BeFalse())
		Expect(board.Acknowledge()).To(BeFalse())

		Consistently(store.IsAuthenticated, timeout/2, 5*time.Millisecond).Should(BeTrue())
		current, _ := store.Current()
		Expect(current.UserID).To(Equal("u-2"))
		Expect(backend.Calls()).To(Equal(0))
		Expect(monitor.Activity()).To(BeTrue())
	})

	It("runs a single backend logout when the operator logs out while the notice is shown", func() {
		login()
		Eventually(func() bool {
			_, ok := board.Pending()
			return ok
		}, time.Second, 5*time.Millisecond).Should(BeTrue())

		monitor.MarkLoggedOut()
		Expect(backend.NotifyLogout(ctx, "Manual logout")).To(Succeed())
		Expect(store.Logout(ctx, events.EndReasonManual)).To(BeTrue())

		Expect(monitor.AwaitLogout(ctx)).To(Succeed())
		Expect(board.Acknowledge()).To(BeFalse())
		Consistently(backend.Calls, 3*timeout, 10*time.Millisecond).Should(Equal(1))
		Expect(backend.Reasons()).To(Equal([]string{"Manual logout"}))
		Expect(store.IsAuthenticated()).To(BeFalse())
	})

	It("stops the timer on teardown", func() {
		login()
		monitor.Stop()
		Consistently(func() bool {
			_, ok := board.Pending()
			return ok
		}, 3*timeout, 10*time.Millisecond).Should(BeFalse())
		Expect(store.IsAuthenticated()).To(BeTrue())
	})

	It("applies a changed timeout on the next reset", func() {
		login()
		monitor.SetTimeout(time.Hour)
		Expect(monitor.Activity()).To(BeTrue())
		Consistently(monitor.State, 3*timeout, 10*time.Millisecond).Should(Equal(inactivity.StateActive))
		Expect(monitor.Timeout()).To(Equal(time.Hour))
	})
})

var _ = Describe("NoticeBoard", func() {
	It("releases the waiter on acknowledgement", func() {
		board := inactivity.NewNoticeBoard()
		done := make(chan error, 1)
		go func() { done <- board.NotifyExpired(context.Background(), "expired") }()

		Eventually(func() string {
			n, _ := board.Pending()
			return n.Message
		}).Should(Equal("expired"))
		Expect(board.Acknowledge()).To(BeTrue())
		Eventually(done).Should(Receive(BeNil()))
		Expect(board.Acknowledge()).To(BeFalse())
	})

	It("gives up when the context ends", func() {
		board := inactivity.NewNoticeBoard()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := board.NotifyExpired(ctx, "expired")
		Expect(err).To(MatchError(context.Canceled))
		_, ok := board.Pending()
		Expect(ok).To(BeFalse())
	})

	It("formats the reason timestamp as local date and time", func() {
		ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local).Format(inactivity.ReasonTimeLayout)
		Expect(strings.TrimSpace(ts)).To(Equal("3/5/2024, 2:07:09 PM"))
	})
})
