package incubation

import (
	"log/slog"

	"github.com/frahmantamala/incubation-console/internal/apiclient"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/incubation"
	"github.com/frahmantamala/incubation-console/internal/crud"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

const (
	Module      = "Incubation Management"
	BackendPath = "/incubations"
)

type Service = crud.Service[dm.Incubation, Form]

var Descriptor = listing.Descriptor[dm.Incubation]{
	Name:   "incubations",
	Module: Module,
	ID:     func(i dm.Incubation) string { return i.ID.String() },
	SearchFields: func(i dm.Incubation) []string {
		return []string{i.Name, i.Description, i.Location}
	},
	Columns: []listing.Column[dm.Incubation]{
		{Key: "name", Label: "Name", Value: func(i dm.Incubation) string { return i.Name }},
		{Key: "description", Label: "Description", Value: func(i dm.Incubation) string { return i.Description }},
		{Key: "website", Label: "Website", Value: func(i dm.Incubation) string { return i.Website }},
		{Key: "location", Label: "Location", Value: func(i dm.Incubation) string { return i.Location }},
		{Key: "adminState", Label: "Status", Value: func(i dm.Incubation) string { return i.AdminState.String() }},
	},
}

func NewService(client *apiclient.Client, logger *slog.Logger) *Service {
	resource := apiclient.NewResource(client, BackendPath, Module, "incubation", Descriptor.ID)
	return crud.NewService(guard.ScreenIncubations, Descriptor, resource, payload, logger)
}
