package listing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/export"
	"github.com/frahmantamala/incubation-console/internal/transport"
)

// Handler serves the entity-independent routes of a list screen: view, delete and export.
type Handler[T any] struct {
	*transport.BaseHandler
	controller *Controller[T]
	now        func() time.Time
}

func NewHandler[T any](c *Controller[T], base *transport.BaseHandler) *Handler[T] {
	return &Handler[T]{BaseHandler: base, controller: c, now: time.Now}
}

func (h *Handler[T]) Controller() *Controller[T] { return h.controller }

// Mount registers GET /, DELETE /{id} and GET /export on r.
func (h *Handler[T]) Mount(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.load(r.Context(), q.Get("refresh") == "true"); err != nil && errors.Is(err, context.Canceled) {
		return
	}
	if err := ApplyParams(h.controller, q); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, h.controller.Snapshot())
}

func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ensureReady(r.Context()); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if err := h.controller.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Record %s deleted", id),
		"view":    h.controller.Snapshot(),
	})
}

func (h *Handler[T]) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if err := h.load(r.Context(), false); err != nil && errors.Is(err, context.Canceled) {
		return
	}

	name := h.controller.Name()
	data, err := export.Render(h.controller.Table(), format, name)
	if err != nil {
		h.WriteAppError(w, internal.NewInternalError("failed to render export", err))
		return
	}
	h.WriteAttachment(w, export.Filename(name, format, h.now()), format.ContentType(), data)
}

// ensureReady loads the list if needed so a mutation can find its row.
func (h *Handler[T]) ensureReady(ctx context.Context) error {
	if err := h.controller.Mount(ctx); err != nil {
		return err
	}
	if h.controller.Status() != StatusReady {
		return internal.NewConflictError("The list is not loaded yet", internal.ErrCodeListNotReady)
	}
	return nil
}

func (h *Handler[T]) load(ctx context.Context, refresh bool) error {
	if refresh {
		return h.controller.Load(ctx)
	}
	return h.controller.Mount(ctx)
}

// ApplyParams applies search, pageSize, sort/dir and page in that order, so a new search
// lands on the requested page rather than always the first.
func ApplyParams[T any](c *Controller[T], q url.Values) error {
	if q.Has("search") {
		c.SetQuery(q.Get("search"))
	}
	if v := q.Get("pageSize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return internal.NewValidationFieldError("pageSize", "page size must be a number", internal.ErrCodeInvalidPageSize)
		}
		if err := c.SetPageSize(size); err != nil {
			return err
		}
	}
	if q.Has("sort") {
		if err := c.SetSort(q.Get("sort"), SortDirection(q.Get("dir"))); err != nil {
			return err
		}
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return internal.NewValidationFieldError("page", "page must be a number", internal.ErrCodeValidationFailed)
		}
		c.SetPage(page)
	}
	return nil
}
