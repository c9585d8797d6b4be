package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/export"
)

type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusReady   Status = "READY"
	StatusError   Status = "ERROR"
)

// Mutation actions tracked per row.
const (
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Controller drives one list screen. It is safe for concurrent use.
//
// Loads are numbered; a response whose number is no longer current (because the screen was
// unmounted or reloaded since) is discarded. A row may have only one mutation in flight.
type Controller[T any] struct {
	desc   Descriptor[T]
	repo   Repository[T]
	logger *slog.Logger

	mu         sync.Mutex
	status     Status
	lastErr    string
	view       *ViewState[T]
	generation uint64
	cancel     context.CancelFunc
	busy       map[string]string
	loadedAt   time.Time
}

func NewController[T any](desc Descriptor[T], repo Repository[T], logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		desc:   desc,
		repo:   repo,
		logger: logger.With("entity", desc.Name),
		status: StatusIdle,
		view:   NewViewState(desc),
		busy:   make(map[string]string),
	}
}

func (c *Controller[T]) Name() string              { return c.desc.Name }
func (c *Controller[T]) Descriptor() Descriptor[T] { return c.desc }

// Mount loads the list the first time the screen is opened in a session.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	idle := c.status == StatusIdle
	c.mu.Unlock()
	if !idle {
		return nil
	}
	return c.Load(ctx)
}

// Load fetches the full list. A failure keeps the previous rows and records the message;
// the screen stays usable.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.status = StatusLoading
	c.mu.Unlock()

	items, err := c.repo.List(loadCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()
	if gen != c.generation {
		c.logger.Debug("discarding stale list response", "generation", gen, "current", c.generation)
		return nil
	}
	c.cancel = nil

	if err != nil {
		c.status = StatusError
		c.lastErr = errorMessage(err)
		c.logger.Warn("failed to load list", "error", err)
		return err
	}

	c.view.SetItems(items)
	c.status = StatusReady
	c.lastErr = ""
	c.loadedAt = time.Now()
	c.logger.Debug("list loaded", "count", len(items))
	return nil
}

// Unmount tears the screen down: the in-flight load is cancelled, its result will be
// ignored, and cached rows are dropped.
func (c *Controller[T]) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.status = StatusIdle
	c.lastErr = ""
	c.view = NewViewState(c.desc)
	c.busy = make(map[string]string)
}

func (c *Controller[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller[T]) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetQuery(q)
}

func (c *Controller[T]) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetPage(page)
}

func (c *Controller[T]) SetPageSize(size int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.SetPageSize(size)
}

func (c *Controller[T]) SetSort(key string, dir SortDirection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.SetSort(key, dir)
}

// Items returns the full filtered list in display order.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Filtered()
}

func (c *Controller[T]) Raw() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Raw()
}

// Find looks id up in the last loaded list.
func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

func (c *Controller[T]) findLocked(id string) (T, bool) {
	for _, item := range c.view.raw {
		if c.desc.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) IsBusy(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.busy[id]
	return ok
}

// CanEdit is false while any mutation on the row is running.
func (c *Controller[T]) CanEdit(item T) bool {
	return !c.IsBusy(c.desc.ID(item))
}

// CanDelete is false for protected rows regardless of busy state.
func (c *Controller[T]) CanDelete(item T) bool {
	if c.desc.protected(item) {
		return false
	}
	return !c.IsBusy(c.desc.ID(item))
}

// Create runs an add. Adds are not tied to an existing row, so they are not busy-tracked.
func (c *Controller[T]) Create(ctx context.Context, fn func(context.Context) error) error {
	return c.Mutate(ctx, "", ActionAdd, fn)
}

// Update runs fn against an existing row.
func (c *Controller[T]) Update(ctx context.Context, id string, fn func(context.Context, T) error) error {
	item, ok := c.Find(id)
	if !ok {
		return internal.ErrRecordNotFound
	}
	return c.Mutate(ctx, id, ActionEdit, func(ctx context.Context) error { return fn(ctx, item) })
}

// Delete removes a row through the repository. Protected rows are refused before any
// network call.
func (c *Controller[T]) Delete(ctx context.Context, id string) error {
	item, ok := c.Find(id)
	if !ok {
		return internal.ErrRecordNotFound
	}
	if c.desc.protected(item) {
		c.logger.Warn("refused to delete protected record", "id", id)
		return internal.ErrProtectedRecord
	}
	return c.Mutate(ctx, id, ActionDelete, func(ctx context.Context) error { return c.repo.Delete(ctx, item) })
}

// Mutate marks id busy, runs fn and, when it succeeds, reloads the whole list. On failure
// the list is left as it was. An empty id skips busy tracking.
func (c *Controller[T]) Mutate(ctx context.Context, id, action string, fn func(context.Context) error) error {
	if id != "" {
		c.mu.Lock()
		if running, ok := c.busy[id]; ok {
			c.mu.Unlock()
			c.logger.Debug("row busy", "id", id, "running", running, "requested", action)
			return internal.ErrRowBusy
		}
		c.busy[id] = action
		c.mu.Unlock()
	}

	err := fn(ctx)

	if id != "" {
		c.mu.Lock()
		delete(c.busy, id)
		c.mu.Unlock()
	}

	if err != nil {
		c.logger.Warn("mutation failed", "id", id, "action", action, "error", err)
		return err
	}

	c.logger.Info("mutation applied", "id", id, "action", action)
	c.Reload(ctx)
	return nil
}

// Reload refetches the list; a failure is recorded on the screen rather than returned.
func (c *Controller[T]) Reload(ctx context.Context) {
	if err := c.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("reload after mutation failed", "error", err)
	}
}

// Table renders every filtered row, ignoring paging, in display order.
func (c *Controller[T]) Table() export.Table {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := export.Table{Headers: make([]string, len(c.desc.Columns))}
	for i, col := range c.desc.Columns {
		t.Headers[i] = col.Label
	}
	for _, item := range c.view.filtered {
		row := make([]string, len(c.desc.Columns))
		for i, col := range c.desc.Columns {
			row[i] = col.Value(item)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func errorMessage(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
