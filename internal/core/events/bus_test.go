package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal/core/events"
)

func TestEvents(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Event Bus Suite")
}

var _ = ginkgo.Describe("EventBus", func() {
	var (
		ctx context.Context
		bus *events.EventBus
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	ginkgo.It("should deliver synchronously to every subscriber of the type", func() {
		var got []string
		bus.Subscribe(events.EventTypeSessionEnded, func(ctx context.Context, e events.Event) error {
			got = append(got, e.(*events.SessionEndedEvent).Reason)
			return nil
		})
		bus.Subscribe(events.EventTypeSessionStarted, func(ctx context.Context, e events.Event) error {
			got = append(got, "wrong type")
			return nil
		})

		gomega.Expect(bus.PublishSync(ctx, events.NewSessionEndedEvent("42", events.EndReasonManual))).To(gomega.Succeed())
		gomega.Expect(got).To(gomega.Equal([]string{events.EndReasonManual}))
	})

	ginkgo.It("should stop delivering after unsubscribe", func() {
		var calls atomic.Int32
		unsubscribe := bus.Subscribe(events.EventTypeSessionExpired, func(ctx context.Context, e events.Event) error {
			calls.Add(1)
			return nil
		})

		gomega.Expect(bus.PublishSync(ctx, events.NewSessionExpiredEvent("1", "bye"))).To(gomega.Succeed())
		unsubscribe()
		unsubscribe()
		gomega.Expect(bus.PublishSync(ctx, events.NewSessionExpiredEvent("1", "bye"))).To(gomega.Succeed())

		gomega.Expect(calls.Load()).To(gomega.Equal(int32(1)))
	})

	ginkgo.It("should report a failing synchronous handler", func() {
		bus.Subscribe(events.EventTypeSessionStarted, func(ctx context.Context, e events.Event) error {
			return errors.New("listener down")
		})

		err := bus.PublishSync(ctx, events.NewSessionStartedEvent("1", 0))
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("listener down")))
	})

	ginkgo.It("should deliver asynchronously on Publish", func() {
		var calls atomic.Int32
		bus.Subscribe(events.EventTypeSessionStarted, func(ctx context.Context, e events.Event) error {
			calls.Add(1)
			return nil
		})

		gomega.Expect(bus.Publish(ctx, events.NewSessionStartedEvent("1", 4))).To(gomega.Succeed())
		gomega.Eventually(calls.Load).Should(gomega.Equal(int32(1)))
	})
})
