package incubation_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/apiclient"
	"github.com/frahmantamala/incubation-console/internal/apiclient/apiclienttest"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/incubation"
	"github.com/frahmantamala/incubation-console/internal/incubation"
	"github.com/frahmantamala/incubation-console/internal/session"
)

func TestIncubation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Incubation Suite")
}

var _ = Describe("Incubation screen", func() {
	var (
		ctx     context.Context
		backend *apiclienttest.Backend
		service *incubation.Service
		rows    []map[string]interface{}
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		store := session.NewStore(nil, logger)
		tenant := "t-9"
		Expect(store.Login(ctx, session.Session{Token: "tok", UserID: "1", TenantID: &tenant})).To(Succeed())

		rows = []map[string]interface{}{
			{"id": 1, "name": "Alpha Labs", "description": "Robotics", "location": "Jakarta", "adminState": 1},
			{"id": 2, "name": "Beta Hub", "description": "Fintech", "location": "Bandung, West Java", "adminState": 0},
		}
		backend = apiclienttest.NewBackend()
		backend.Handle(http.MethodGet, "/incubations", func(*http.Request, []byte) (int, string, interface{}) {
			return 200, "ok", rows
		})
		backend.Handle(http.MethodPost, "/incubations", func(_ *http.Request, body []byte) (int, string, interface{}) {
			var created map[string]interface{}
			_ = json.Unmarshal(body, &created)
			created["id"] = 3
			rows = append(rows, created)
			return 200, "created", nil
		})

		client := apiclient.NewClient(apiclient.Config{BaseURL: backend.URL}, store, logger)
		service = incubation.NewService(client, logger)
	})

	AfterEach(func() {
		backend.Close()
	})

	It("lists incubations of the session tenant with audit tags", func() {
		Expect(service.Mount(ctx)).To(Succeed())
		Expect(service.Items()).To(HaveLen(2))

		call := backend.CallsTo(http.MethodGet, "/incubations")[0]
		Expect(call.Query).To(Equal("tenantId=t-9"))
		Expect(call.Header.Get("X-Module")).To(Equal(incubation.Module))
		Expect(call.Header.Get("X-Action")).To(Equal("View incubation list"))
	})

	It("searches name, description and location", func() {
		Expect(service.Mount(ctx)).To(Succeed())
		service.SetQuery("west java")
		Expect(service.Items()).To(ConsistOf(HaveField("Name", "Beta Hub")))
		service.SetQuery("ROBOT")
		Expect(service.Items()).To(ConsistOf(HaveField("Name", "Alpha Labs")))
	})

	It("adds a record and reloads the list", func() {
		Expect(service.Mount(ctx)).To(Succeed())
		err := service.Create(ctx, incubation.Form{Name: " Gamma ", Website: "https://gamma.io"})
		Expect(err).NotTo(HaveOccurred())

		post := backend.CallsTo(http.MethodPost, "/incubations")[0]
		Expect(post.Body).To(MatchJSON(`{"name":"Gamma","description":"","website":"https://gamma.io","location":"","adminState":1}`))
		Expect(backend.CallsTo(http.MethodGet, "/incubations")).To(HaveLen(2))
		_, found := service.Find("3")
		Expect(found).To(BeTrue())
	})

	It("rejects an invalid form without calling the backend", func() {
		err := service.Create(ctx, incubation.Form{Website: "ftp://nope"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("name is required"))
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("website must be an http or https URL"))
		Expect(backend.Calls()).To(BeEmpty())
	})

	It("exports with a comma-bearing location quoted", func() {
		Expect(service.Mount(ctx)).To(Succeed())
		table := service.Table()
		Expect(table.Headers).To(Equal([]string{"Name", "Description", "Website", "Location", "Status"}))
		Expect(table.Rows[1]).To(Equal([]string{"Beta Hub", "Fintech", "", "Bandung, West Java", "Disabled"}))
	})

	It("decodes numeric ids into string identifiers", func() {
		var i dm.Incubation
		Expect(json.Unmarshal([]byte(`{"id":42,"name":"x"}`), &i)).To(Succeed())
		Expect(incubation.Descriptor.ID(i)).To(Equal("42"))
	})
})
