// Package listing implements the list screen shared by every management entity: load the
// full list from the backend, filter, sort and page it locally, and run row mutations
// followed by a full reload.
package listing

import (
	"context"
	"strings"
)

// Column is one grid column. Value renders the cell used for display, sorting and export.
type Column[T any] struct {
	Key   string
	Label string
	Value func(T) string
	// Less overrides the default case-insensitive comparison of Value.
	Less func(a, b T) bool
}

// Descriptor tells the controller everything entity specific it needs.
type Descriptor[T any] struct {
	// Name is the entity slug used in logs and export filenames, e.g. "incubations".
	Name string
	// Module is the audit tag sent with every backend call from this screen.
	Module       string
	ID           func(T) string
	SearchFields func(T) []string
	Columns      []Column[T]
	// Protected marks built-in records whose delete action is always disabled.
	Protected func(T) bool
}

// Repository is the backend side of a list screen.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Delete(ctx context.Context, item T) error
}

func (d Descriptor[T]) column(key string) (Column[T], bool) {
	for _, c := range d.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (d Descriptor[T]) matches(item T, query string) bool {
	if query == "" {
		return true
	}
	if d.SearchFields == nil {
		return false
	}
	for _, field := range d.SearchFields(item) {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (d Descriptor[T]) protected(item T) bool {
	return d.Protected != nil && d.Protected(item)
}

func (c Column[T]) less(a, b T) bool {
	if c.Less != nil {
		return c.Less(a, b)
	}
	return strings.ToLower(c.Value(a)) < strings.ToLower(c.Value(b))
}
