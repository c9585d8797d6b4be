package association

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/bulk"
	"github.com/frahmantamala/incubation-console/internal/core/common/form"
	"github.com/frahmantamala/incubation-console/internal/listing"
	"github.com/frahmantamala/incubation-console/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	services map[Kind]*Service
	lists    map[Kind]*listing.Handler[UserLinks]
}

func NewHandler(base *transport.BaseHandler, services ...*Service) *Handler {
	h := &Handler{
		BaseHandler: base,
		services:    make(map[Kind]*Service),
		lists:       make(map[Kind]*listing.Handler[UserLinks]),
	}
	for _, s := range services {
		h.services[s.Kind()] = s
		h.lists[s.Kind()] = listing.NewHandler(s.Controller, base)
	}
	return h
}

// Mount registers /{kind}/ routes for every configured kind.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.Kinds)
	r.Get("/{kind}/incubatees", h.Incubatees)
	r.Get("/{kind}/export", h.withList(func(l *listing.Handler[UserLinks]) http.HandlerFunc { return l.Export }))
	r.Get("/{kind}", h.withList(func(l *listing.Handler[UserLinks]) http.HandlerFunc { return l.List }))
	r.Get("/{kind}/", h.withList(func(l *listing.Handler[UserLinks]) http.HandlerFunc { return l.List }))
	r.Put("/{kind}/{userId}", h.Reconcile)
}

func (h *Handler) Kinds(w http.ResponseWriter, r *http.Request) {
	kinds := make([]Kind, 0, len(h.services))
	for _, k := range Kinds() {
		if _, ok := h.services[k]; ok {
			kinds = append(kinds, k)
		}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"kinds": kinds})
}

func (h *Handler) withList(pick func(*listing.Handler[UserLinks]) http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		l, ok := h.lists[kind]
		if !ok {
			h.WriteAppError(w, errors.ErrRecordNotFound)
			return
		}
		pick(l)(w, r)
	}
}

func (h *Handler) service(r *http.Request) (*Service, error) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return nil, err
	}
	s, ok := h.services[kind]
	if !ok {
		return nil, errors.ErrRecordNotFound
	}
	return s, nil
}

func (h *Handler) Incubatees(w http.ResponseWriter, r *http.Request) {
	s, err := h.service(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	items, err := s.Incubatees(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"incubatees": items})
}

type reconcileResponse struct {
	Message string                  `json:"message"`
	Error   *errors.AppError        `json:"error,omitempty"`
	Result  bulk.Result             `json:"result"`
	View    listing.View[UserLinks] `json:"view"`
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	s, err := h.service(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var f LinkForm
	if err := form.FromRequest(r, &f); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if len(f.IncubateeIDs) == 1 && strings.Contains(f.IncubateeIDs[0], ",") {
		f.IncubateeIDs = SplitIDs(f.IncubateeIDs[0])
	}
	if err := f.Validate(); err != nil {
		h.WriteAppError(w, err)
		return
	}

	res, err := s.Reconcile(r.Context(), chi.URLParam(r, "userId"), f.IncubateeIDs)
	resp := reconcileResponse{Result: res, View: s.Snapshot()}
	if err == nil {
		resp.Message = "Associations updated"
		h.WriteJSON(w, http.StatusOK, resp)
		return
	}

	appErr, ok := errors.IsAppError(err)
	if !ok || (appErr.Type != errors.ErrorTypePartialBatch && appErr.Type != errors.ErrorTypeBatchFailed) {
		h.WriteAppError(w, err)
		return
	}
	h.Logger.WarnContext(r.Context(), "association batch not fully applied",
		"user_id", chi.URLParam(r, "userId"),
		"outcome", res.Outcome,
		"failures", len(res.Failures))
	resp.Message = appErr.Message
	resp.Error = appErr
	h.WriteJSON(w, appErr.StatusCode, resp)
}
