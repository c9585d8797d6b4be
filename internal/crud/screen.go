// Package crud wires a list controller, a backend resource and a typed form into one
// management screen, and exposes it to the HTTP console and the shell.
package crud

import (
	"context"

	"github.com/frahmantamala/incubation-console/internal/export"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

// Screen is the entity-independent face of a management screen.
type Screen interface {
	Name() string
	// Path is the guarded console path, e.g. /Incubation/Roles.
	Path() string
	Mount(ctx context.Context) error
	Load(ctx context.Context) error
	Unmount()
	Status() listing.Status
	Summary() listing.Summary
	SetQuery(q string)
	SetPage(page int)
	SetPageSize(size int) error
	SetSort(key string, dir listing.SortDirection) error
	// PageTable is the current page as text; Table is every filtered row for export.
	PageTable() export.Table
	Table() export.Table
	LastError() string
	Delete(ctx context.Context, id string) error
	CreateFrom(ctx context.Context, pairs []string) error
	UpdateFrom(ctx context.Context, id string, pairs []string) error
}

// Form is a typed, self-validating input of an add or edit dialog.
type Form interface {
	Validate() error
}

// CreateValidator is implemented by forms with stricter rules on add than on edit.
type CreateValidator interface {
	ValidateCreate() error
}

// AdminState resolves an optional adminState field; records are enabled unless told otherwise.
func AdminState(p *int) int {
	if p == nil {
		return 1
	}
	return *p
}
