package role_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/apiclient"
	"github.com/frahmantamala/incubation-console/internal/apiclient/apiclienttest"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/role"
	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
	"github.com/frahmantamala/incubation-console/internal/role"
	"github.com/frahmantamala/incubation-console/internal/session"
)

func TestRole(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Role Suite")
}

var _ = Describe("Role screen", func() {
	var (
		ctx     context.Context
		backend *apiclienttest.Backend
		service *role.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		store := session.NewStore(nil, logger)
		Expect(store.Login(ctx, session.Session{Token: "tok", UserID: "1"})).To(Succeed())

		backend = apiclienttest.NewBackend()
		backend.Handle(http.MethodGet, "/roles", apiclienttest.OK([]map[string]interface{}{
			{"id": "r0", "roleId": 0, "name": "Super Admin"},
			{"id": "r4", "roleId": 4, "name": "Incubatee"},
			{"id": "r9", "roleId": 9, "name": "Auditor"},
		}))
		backend.Handle(http.MethodDelete, "/roles/r9", apiclienttest.OK(nil))
		backend.Handle(http.MethodPut, "/roles/r4", apiclienttest.Fail(409, "Role is in use"))

		client := apiclient.NewClient(apiclient.Config{BaseURL: backend.URL}, store, logger)
		service = role.NewService(client, logger)
		Expect(service.Mount(ctx)).To(Succeed())
	})

	AfterEach(func() {
		backend.Close()
	})

	It("protects every built-in role id", func() {
		for _, id := range coreuser.KnownRoles() {
			Expect(role.Descriptor.Protected(dm.Role{RoleID: id})).To(BeTrue())
		}
		Expect(role.Descriptor.Protected(dm.Role{RoleID: 9})).To(BeFalse())
	})

	It("refuses to delete a built-in role without a network call", func() {
		err := service.Delete(ctx, "r4")
		Expect(errors.Is(err, internal.ErrProtectedRecord)).To(BeTrue())
		Expect(backend.CallsTo(http.MethodDelete, "/roles/r4")).To(BeEmpty())
	})

	It("deletes custom roles", func() {
		Expect(service.Delete(ctx, "r9")).To(Succeed())
		Expect(backend.CallsTo(http.MethodDelete, "/roles/r9")).To(HaveLen(1))
	})

	It("surfaces the backend message when an update is rejected", func() {
		roleID := 4
		err := service.Update(ctx, "r4", role.Form{RoleID: &roleID, Name: "Startup"})
		Expect(err).To(MatchError("Role is in use"))
		Expect(internal.IsType(err, internal.ErrorTypeApplication)).To(BeTrue())
	})

	It("requires a role id", func() {
		err := role.Form{Name: "Auditor"}.Validate()
		Expect(err).To(MatchError("roleId is required"))
	})

	It("sorts the role id column numerically", func() {
		Expect(service.SetSort("roleId", "desc")).To(Succeed())
		Expect(service.Items()[0].Name).To(Equal("Auditor"))
	})
})
