package listing_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal/listing"
	"github.com/frahmantamala/incubation-console/internal/transport"
)

var _ = Describe("Handler", func() {
	var (
		repo   *fakeRepo
		router chi.Router
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = &fakeRepo{items: []item{
			{ID: "1", Name: "Alpha, Inc", Description: "Robotics"},
			{ID: "2", Name: "Beta", Description: "Fintech"},
			{ID: "0", Name: "System", Builtin: true},
		}}
		controller := listing.NewController(itemDescriptor, repo, logger)
		handler := listing.NewHandler(controller, transport.NewBaseHandler(logger))
		router = chi.NewRouter()
		router.Route("/items", handler.Mount)
	})

	serve := func(method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		return rec
	}

	It("renders the requested page of the filtered view", func() {
		rec := serve(http.MethodGet, "/items/?search=a&pageSize=5&sort=name&dir=desc")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var view listing.View[item]
		Expect(json.Unmarshal(rec.Body.Bytes(), &view)).To(Succeed())
		Expect(view.Status).To(Equal(listing.StatusReady))
		Expect(view.PageSize).To(Equal(5))
		Expect(view.TotalItems).To(Equal(2))
		Expect(view.Rows[0].Item.Name).To(Equal("Beta"))
	})

	It("rejects an invalid page size", func() {
		rec := serve(http.MethodGet, "/items/?pageSize=7")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
	})

	It("refuses to delete a protected record", func() {
		rec := serve(http.MethodDelete, "/items/0")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("PROTECTED_RECORD"))
		Expect(repo.Deleted()).To(BeEmpty())
	})

	It("deletes a record", func() {
		rec := serve(http.MethodDelete, "/items/2")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(repo.Deleted()).To(Equal([]string{"2"}))
	})

	It("exports the filtered rows as a dated CSV attachment", func() {
		rec := serve(http.MethodGet, "/items/export?format=csv")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring("items_" + time.Now().Format("2006-01-02") + ".csv"))
		Expect(rec.Body.String()).To(Equal("Name,Description\n\"Alpha, Inc\",Robotics\nBeta,Fintech\nSystem,\n"))
	})

	It("rejects unknown export formats", func() {
		rec := serve(http.MethodGet, "/items/export?format=pdf")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
