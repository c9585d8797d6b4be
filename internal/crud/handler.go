package crud

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/core/common/form"
	"github.com/frahmantamala/incubation-console/internal/listing"
	"github.com/frahmantamala/incubation-console/internal/transport"
)

type Handler[T any, F Form] struct {
	*transport.BaseHandler
	service *Service[T, F]
	list    *listing.Handler[T]
}

func NewHandler[T any, F Form](base *transport.BaseHandler, service *Service[T, F]) *Handler[T, F] {
	return &Handler[T, F]{
		BaseHandler: base,
		service:     service,
		list:        listing.NewHandler(service.Controller, base),
	}
}

// Mount registers the list, export, add, edit and delete routes.
func (h *Handler[T, F]) Mount(r chi.Router) {
	h.list.Mount(r)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
}

func (h *Handler[T, F]) Create(w http.ResponseWriter, r *http.Request) {
	var f F
	if err := form.FromRequest(r, &f); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if err := h.service.Mount(r.Context()); err != nil {
		h.Logger.WarnContext(r.Context(), "list not loaded before create", "error", err)
	}
	if err := h.service.Create(r.Context(), f); err != nil {
		h.WriteAppError(w, err)
		return
	}
	userID, _, _ := internal.OperatorFromContext(r.Context())
	h.Logger.InfoContext(r.Context(), "record added", "screen", h.service.Name(), "user_id", userID)
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Record added",
		"view":    h.service.Snapshot(),
	})
}

func (h *Handler[T, F]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var f F
	if err := form.FromRequest(r, &f); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if err := h.service.Mount(r.Context()); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if err := h.service.Update(r.Context(), id, f); err != nil {
		h.WriteAppError(w, err)
		return
	}
	userID, _, _ := internal.OperatorFromContext(r.Context())
	h.Logger.InfoContext(r.Context(), "record updated", "screen", h.service.Name(), "id", id, "user_id", userID)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Record updated",
		"view":    h.service.Snapshot(),
	})
}
