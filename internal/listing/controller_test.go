package listing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

var _ = Describe("Controller", func() {
	var (
		ctx        context.Context
		repo       *fakeRepo
		controller *listing.Controller[item]
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &fakeRepo{items: []item{
			{ID: "1", Name: "Alpha Labs", Description: "Robotics"},
			{ID: "2", Name: "Beta Hub", Description: "fintech"},
			{ID: "3", Name: "Gamma", Description: "Agritech, FinTech"},
			{ID: "0", Name: "System", Description: "built in", Builtin: true},
		}}
		controller = listing.NewController(itemDescriptor, repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("loading", func() {
		It("moves from IDLE to READY on mount", func() {
			Expect(controller.Status()).To(Equal(listing.StatusIdle))
			Expect(controller.Mount(ctx)).To(Succeed())
			Expect(controller.Status()).To(Equal(listing.StatusReady))
			Expect(controller.Items()).To(HaveLen(4))
		})

		It("only fetches once per mount", func() {
			Expect(controller.Mount(ctx)).To(Succeed())
			Expect(controller.Mount(ctx)).To(Succeed())
			Expect(repo.ListCalls()).To(Equal(1))
		})

		It("keeps the screen usable after a failed load", func() {
			repo.listErr = internal.NewNetworkError(errors.New("dial tcp: refused"))
			Expect(controller.Mount(ctx)).NotTo(Succeed())

			view := controller.Snapshot()
			Expect(view.Status).To(Equal(listing.StatusError))
			Expect(view.Error).To(Equal(internal.MsgNetworkFailure))
			Expect(view.Rows).To(BeEmpty())

			controller.SetQuery("alpha")
			Expect(controller.Items()).To(BeEmpty())
		})

		It("keeps previously loaded rows when a reload fails", func() {
			Expect(controller.Mount(ctx)).To(Succeed())
			repo.listErr = internal.NewApplicationError("boom", internal.ErrCodeBackendRejected)
			repo.items = nil

			Expect(controller.Load(ctx)).NotTo(Succeed())
			Expect(controller.Status()).To(Equal(listing.StatusError))
			Expect(controller.Items()).To(HaveLen(4))
		})

		It("discards a response that arrives after unmount", func() {
			repo.gate = make(chan []item, 1)
			done := make(chan error, 1)
			go func() { done <- controller.Load(ctx) }()

			Eventually(controller.Status).Should(Equal(listing.StatusLoading))
			controller.Unmount()

			Eventually(done).Should(Receive(BeNil()))
			Expect(controller.Status()).To(Equal(listing.StatusIdle))
			Expect(controller.Raw()).To(BeEmpty())
		})

		It("lets the newest of two overlapping loads win", func() {
			repo.gate = make(chan []item)
			first := make(chan error, 1)
			go func() { first <- controller.Load(ctx) }()
			Eventually(repo.ListCalls).Should(Equal(1))

			second := make(chan error, 1)
			go func() { second <- controller.Load(ctx) }()
			Eventually(repo.ListCalls).Should(Equal(2))

			// the first load's context was cancelled by the second
			Eventually(first).Should(Receive(BeNil()))
			repo.gate <- []item{{ID: "9", Name: "Newest"}}
			Eventually(second).Should(Receive(BeNil()))

			Expect(controller.Items()).To(ConsistOf(item{ID: "9", Name: "Newest"}))
		})
	})

	Describe("filtering", func() {
		BeforeEach(func() {
			Expect(controller.Mount(ctx)).To(Succeed())
		})

		It("matches case-insensitively on the search fields", func() {
			controller.SetQuery("FINTECH")
			ids := []string{}
			for _, it := range controller.Items() {
				ids = append(ids, it.ID)
			}
			Expect(ids).To(Equal([]string{"2", "3"}))
		})

		It("yields a subset of the raw rows without touching them", func() {
			for _, q := range []string{"", "a", "tech", "zzz", "  beta "} {
				controller.SetQuery(q)
				raw := controller.Raw()
				Expect(raw).To(HaveLen(4))
				needle := strings.ToLower(strings.TrimSpace(q))
				for _, it := range controller.Items() {
					Expect(raw).To(ContainElement(it))
					Expect(strings.ToLower(it.Name) + " " + strings.ToLower(it.Description)).To(ContainSubstring(needle))
				}
			}
		})

		It("resets to the first page whenever the query changes", func() {
			Expect(controller.SetPageSize(5)).To(Succeed())
			repo.items = sampleItems(23)
			Expect(controller.Load(ctx)).To(Succeed())
			controller.SetPage(3)
			Expect(controller.Snapshot().Page).To(Equal(3))

			controller.SetQuery("item")
			Expect(controller.Snapshot().Page).To(Equal(0))
			controller.SetPage(2)
			controller.SetQuery("item")
			Expect(controller.Snapshot().Page).To(Equal(0))
		})
	})

	Describe("paging and sorting", func() {
		BeforeEach(func() {
			repo.items = sampleItems(23)
			Expect(controller.Mount(ctx)).To(Succeed())
		})

		It("rejects page sizes outside the allowed set", func() {
			err := controller.SetPageSize(7)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(controller.Snapshot().PageSize).To(Equal(listing.DefaultPageSize))
		})

		It("pages the filtered rows and clamps past the end", func() {
			Expect(controller.SetPageSize(5)).To(Succeed())
			controller.SetPage(99)
			view := controller.Snapshot()
			Expect(view.Page).To(Equal(4))
			Expect(view.TotalPages).To(Equal(5))
			Expect(view.Rows).To(HaveLen(3))
		})

		It("returns to the first page when the page size changes", func() {
			Expect(controller.SetPageSize(5)).To(Succeed())
			controller.SetPage(2)
			Expect(controller.SetPageSize(25)).To(Succeed())
			Expect(controller.Snapshot().Page).To(Equal(0))
		})

		It("clamps the page after a reload shrinks the list", func() {
			Expect(controller.SetPageSize(5)).To(Succeed())
			controller.SetPage(4)
			repo.items = sampleItems(6)
			Expect(controller.Load(ctx)).To(Succeed())
			Expect(controller.Snapshot().Page).To(Equal(1))
		})

		It("sorts by a column in either direction", func() {
			repo.items = []item{{ID: "1", Name: "beta"}, {ID: "2", Name: "Alpha"}, {ID: "3", Name: "gamma"}}
			Expect(controller.Load(ctx)).To(Succeed())

			Expect(controller.SetSort("name", listing.SortAsc)).To(Succeed())
			Expect(controller.Items()[0].Name).To(Equal("Alpha"))
			Expect(controller.SetSort("name", listing.SortDesc)).To(Succeed())
			Expect(controller.Items()[0].Name).To(Equal("gamma"))
			Expect(controller.Table().Rows[0][0]).To(Equal("gamma"))
		})

		It("rejects unknown sort columns and directions", func() {
			Expect(controller.SetSort("nope", listing.SortAsc)).To(MatchError(ContainSubstring("unknown column")))
			Expect(controller.SetSort("name", "sideways")).NotTo(Succeed())
		})
	})

	Describe("mutations", func() {
		BeforeEach(func() {
			Expect(controller.Mount(ctx)).To(Succeed())
		})

		It("deletes and reloads from the backend", func() {
			Expect(controller.Delete(ctx, "2")).To(Succeed())
			Expect(repo.Deleted()).To(Equal([]string{"2"}))
			Expect(repo.ListCalls()).To(Equal(2))
			_, found := controller.Find("2")
			Expect(found).To(BeFalse())
		})

		It("refuses protected rows before any network call", func() {
			err := controller.Delete(ctx, "0")
			Expect(errors.Is(err, internal.ErrProtectedRecord)).To(BeTrue())
			Expect(repo.Deleted()).To(BeEmpty())
			Expect(repo.ListCalls()).To(Equal(1))

			sys, _ := controller.Find("0")
			Expect(controller.CanDelete(sys)).To(BeFalse())
			Expect(controller.CanEdit(sys)).To(BeTrue())
		})

		It("reports unknown rows as not found", func() {
			Expect(errors.Is(controller.Delete(ctx, "404"), internal.ErrRecordNotFound)).To(BeTrue())
		})

		It("leaves the list untouched when the mutation fails", func() {
			repo.deleteErr = internal.NewApplicationError("in use", internal.ErrCodeBackendRejected)
			before := controller.Raw()

			err := controller.Delete(ctx, "1")
			Expect(err).To(MatchError("in use"))
			Expect(controller.Raw()).To(Equal(before))
			Expect(repo.ListCalls()).To(Equal(1))
			Expect(controller.IsBusy("1")).To(BeFalse())
		})

		It("allows one mutation per row and disables both actions while busy", func() {
			repo.release = make(chan struct{})
			done := make(chan error, 1)
			go func() { done <- controller.Delete(ctx, "1") }()
			Eventually(func() bool { return controller.IsBusy("1") }).Should(BeTrue())

			row, _ := controller.Find("1")
			Expect(controller.CanEdit(row)).To(BeFalse())
			Expect(controller.CanDelete(row)).To(BeFalse())

			err := controller.Update(ctx, "1", func(context.Context, item) error { return nil })
			Expect(errors.Is(err, internal.ErrRowBusy)).To(BeTrue())

			// other rows stay interactive
			other, _ := controller.Find("2")
			Expect(controller.CanEdit(other)).To(BeTrue())
			var flags []bool
			for _, r := range controller.Snapshot().Rows {
				if r.ID == "1" {
					flags = []bool{r.Busy, r.CanEdit, r.CanDelete}
				}
			}
			Expect(flags).To(Equal([]bool{true, false, false}))

			close(repo.release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(controller.IsBusy("1")).To(BeFalse())
		})

		It("reloads after a successful create", func() {
			err := controller.Create(ctx, func(context.Context) error {
				repo.mu.Lock()
				repo.items = append(repo.items, item{ID: "5", Name: "Delta"})
				repo.mu.Unlock()
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			_, found := controller.Find("5")
			Expect(found).To(BeTrue())
		})
	})

	Describe("Table", func() {
		It("exports the full filtered set in display order, ignoring pages", func() {
			repo.items = sampleItems(12)
			Expect(controller.Mount(ctx)).To(Succeed())
			Expect(controller.SetPageSize(5)).To(Succeed())
			Expect(controller.SetSort("name", listing.SortDesc)).To(Succeed())

			table := controller.Table()
			Expect(table.Headers).To(Equal([]string{"Name", "Description"}))
			Expect(table.Rows).To(HaveLen(12))
			items := controller.Items()
			for i, row := range table.Rows {
				Expect(row[0]).To(Equal(items[i].Name))
			}
		})
	})
})
