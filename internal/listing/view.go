package listing

import (
	"time"

	"github.com/frahmantamala/incubation-console/internal/export"
)

// Row is one rendered grid row with its action flags.
type Row[T any] struct {
	ID        string `json:"id"`
	Item      T      `json:"item"`
	Busy      bool   `json:"busy"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

type ColumnInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Summary is the entity-independent state of a screen.
type Summary struct {
	Entity     string        `json:"entity"`
	Status     Status        `json:"status"`
	Error      string        `json:"error,omitempty"`
	Query      string        `json:"query"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
	TotalItems int           `json:"totalItems"`
	RawCount   int           `json:"rawCount"`
	Sort       string        `json:"sort,omitempty"`
	Direction  SortDirection `json:"direction"`
	LoadedAt   time.Time     `json:"loadedAt,omitempty"`
}

// View is a consistent snapshot of the screen.
type View[T any] struct {
	Summary
	Columns []ColumnInfo `json:"columns"`
	Rows    []Row[T]     `json:"rows"`
}

func (c *Controller[T]) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaryLocked()
}

func (c *Controller[T]) summaryLocked() Summary {
	sortKey, dir := c.view.Sort()
	return Summary{
		Entity:     c.desc.Name,
		Status:     c.status,
		Error:      c.lastErr,
		Query:      c.view.Query(),
		Page:       c.view.Page(),
		PageSize:   c.view.PageSize(),
		TotalPages: c.view.TotalPages(),
		TotalItems: len(c.view.filtered),
		RawCount:   len(c.view.raw),
		Sort:       sortKey,
		Direction:  dir,
		LoadedAt:   c.loadedAt,
	}
}

func (c *Controller[T]) Snapshot() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View[T]{Summary: c.summaryLocked(), Rows: []Row[T]{}}
	for _, col := range c.desc.Columns {
		v.Columns = append(v.Columns, ColumnInfo{Key: col.Key, Label: col.Label})
	}
	for _, item := range c.view.PageItems() {
		id := c.desc.ID(item)
		_, busy := c.busy[id]
		v.Rows = append(v.Rows, Row[T]{
			ID:        id,
			Item:      item,
			Busy:      busy,
			CanEdit:   !busy,
			CanDelete: !busy && !c.desc.protected(item),
		})
	}
	return v
}

// PageTable renders the current page with a leading ID column, for text output.
func (c *Controller[T]) PageTable() export.Table {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := export.Table{Headers: []string{"ID"}}
	for _, col := range c.desc.Columns {
		t.Headers = append(t.Headers, col.Label)
	}
	for _, item := range c.view.PageItems() {
		id := c.desc.ID(item)
		if _, busy := c.busy[id]; busy {
			id += " *"
		}
		row := []string{id}
		for _, col := range c.desc.Columns {
			row = append(row, col.Value(item))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
