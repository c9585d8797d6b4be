package application

import (
	"log/slog"

	"github.com/frahmantamala/incubation-console/internal/apiclient"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/application"
	"github.com/frahmantamala/incubation-console/internal/crud"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

const (
	Module           = "Application Management"
	BackendPath      = "/applications"
	GroupBackendPath = "/application-groups"
)

type (
	Service      = crud.Service[dm.Application, Form]
	GroupService = crud.Service[dm.Group, GroupForm]
)

var Descriptor = listing.Descriptor[dm.Application]{
	Name:   "applications",
	Module: Module,
	ID:     func(a dm.Application) string { return a.ID.String() },
	SearchFields: func(a dm.Application) []string {
		return []string{a.Name, a.Description, a.Path}
	},
	Columns: []listing.Column[dm.Application]{
		{Key: "name", Label: "Name", Value: func(a dm.Application) string { return a.Name }},
		{Key: "description", Label: "Description", Value: func(a dm.Application) string { return a.Description }},
		{Key: "path", Label: "Path", Value: func(a dm.Application) string { return a.Path }},
		{Key: "group", Label: "Group", Value: groupLabel},
		{Key: "adminState", Label: "Status", Value: func(a dm.Application) string { return a.AdminState.String() }},
	},
}

var GroupDescriptor = listing.Descriptor[dm.Group]{
	Name:   "application-groups",
	Module: Module,
	ID:     func(g dm.Group) string { return g.ID.String() },
	SearchFields: func(g dm.Group) []string {
		return []string{g.Name, g.Description}
	},
	Columns: []listing.Column[dm.Group]{
		{Key: "name", Label: "Name", Value: func(g dm.Group) string { return g.Name }},
		{Key: "description", Label: "Description", Value: func(g dm.Group) string { return g.Description }},
		{Key: "adminState", Label: "Status", Value: func(g dm.Group) string { return g.AdminState.String() }},
	},
}

func groupLabel(a dm.Application) string {
	if a.GroupName != "" {
		return a.GroupName
	}
	return a.GroupID.String()
}

func NewService(client *apiclient.Client, logger *slog.Logger) *Service {
	resource := apiclient.NewResource(client, BackendPath, Module, "application", Descriptor.ID)
	return crud.NewService(guard.ScreenApplications, Descriptor, resource, payload, logger)
}

func NewGroupService(client *apiclient.Client, logger *slog.Logger) *GroupService {
	resource := apiclient.NewResource(client, GroupBackendPath, Module, "application group", GroupDescriptor.ID)
	return crud.NewService(guard.ScreenApplicationGroups, GroupDescriptor, resource, groupPayload, logger)
}
