package role

import (
	"log/slog"
	"strconv"

	"github.com/frahmantamala/incubation-console/internal/apiclient"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/role"
	"github.com/frahmantamala/incubation-console/internal/crud"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

const (
	Module      = "Role Management"
	BackendPath = "/roles"
)

type Service = crud.Service[dm.Role, Form]

// Descriptor protects the built-in roles the console itself depends on.
var Descriptor = listing.Descriptor[dm.Role]{
	Name:   "roles",
	Module: Module,
	ID:     func(r dm.Role) string { return r.ID.String() },
	SearchFields: func(r dm.Role) []string {
		return []string{r.Name, r.Description}
	},
	Columns: []listing.Column[dm.Role]{
		{
			Key:   "roleId",
			Label: "Role ID",
			Value: func(r dm.Role) string { return strconv.Itoa(int(r.RoleID)) },
			Less:  func(a, b dm.Role) bool { return a.RoleID < b.RoleID },
		},
		{Key: "name", Label: "Name", Value: func(r dm.Role) string { return r.Name }},
		{Key: "description", Label: "Description", Value: func(r dm.Role) string { return r.Description }},
		{Key: "adminState", Label: "Status", Value: func(r dm.Role) string { return r.AdminState.String() }},
	},
	Protected: func(r dm.Role) bool { return r.RoleID.Known() },
}

func NewService(client *apiclient.Client, logger *slog.Logger) *Service {
	resource := apiclient.NewResource(client, BackendPath, Module, "role", Descriptor.ID)
	return crud.NewService(guard.ScreenRoles, Descriptor, resource, payload, logger)
}
