package user

import (
	"log/slog"
	"strconv"

	"github.com/frahmantamala/incubation-console/internal/apiclient"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
	"github.com/frahmantamala/incubation-console/internal/crud"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

const (
	Module      = "User Management"
	BackendPath = "/users"
)

type Service = crud.Service[dm.User, Form]

// NewDescriptor protects super-admin accounts and the configured reserved user ids.
func NewDescriptor(reservedIDs []string) listing.Descriptor[dm.User] {
	reserved := make(map[string]struct{}, len(reservedIDs))
	for _, id := range reservedIDs {
		reserved[id] = struct{}{}
	}

	return listing.Descriptor[dm.User]{
		Name:   "users",
		Module: Module,
		ID:     func(u dm.User) string { return u.ID.String() },
		SearchFields: func(u dm.User) []string {
			return []string{u.Name, u.Email}
		},
		Columns: []listing.Column[dm.User]{
			{Key: "name", Label: "Name", Value: func(u dm.User) string { return u.Name }},
			{Key: "email", Label: "Email", Value: func(u dm.User) string { return u.Email }},
			{Key: "role", Label: "Role", Value: roleLabel},
			{Key: "tenant", Label: "Incubation", Value: tenantLabel},
			{Key: "adminState", Label: "Status", Value: func(u dm.User) string { return u.AdminState.String() }},
		},
		Protected: func(u dm.User) bool {
			if u.RoleID == coreuser.RoleSuperAdmin {
				return true
			}
			_, ok := reserved[u.ID.String()]
			return ok
		},
	}
}

func roleLabel(u dm.User) string {
	if u.RoleName != "" {
		return u.RoleName
	}
	return u.RoleID.String()
}

func tenantLabel(u dm.User) string {
	if u.TenantName != "" {
		return u.TenantName
	}
	if u.TenantID != nil {
		return *u.TenantID
	}
	return ""
}

func NewService(client *apiclient.Client, reservedIDs []string, logger *slog.Logger) *Service {
	desc := NewDescriptor(reservedIDs)
	resource := apiclient.NewResource(client, BackendPath, Module, "user", desc.ID)
	return crud.NewService(guard.ScreenUsers, desc, resource, payload, logger)
}

// Lister returns the users of one role, the way the association screens need them.
func Lister(client *apiclient.Client, role coreuser.RoleID, module string) *apiclient.Resource[dm.User] {
	return apiclient.NewResource(client, BackendPath, module, "user",
		func(u dm.User) string { return u.ID.String() }).
		WithQuery(map[string][]string{"roleId": {strconv.Itoa(int(role))}})
}
