package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Resource is a REST collection of the backend: GET and POST on the collection, PUT and
// DELETE on /{id}. List calls are scoped to the session's tenant when it has one.
type Resource[T any] struct {
	client *Client
	path   string
	module string
	noun   string
	id     func(T) string
	query  url.Values
}

func NewResource[T any](client *Client, path, module, noun string, id func(T) string) *Resource[T] {
	return &Resource[T]{
		client: client,
		path:   "/" + strings.Trim(path, "/"),
		module: module,
		noun:   noun,
		id:     id,
	}
}

// WithQuery returns a copy that adds q to every list call.
func (r *Resource[T]) WithQuery(q url.Values) *Resource[T] {
	cp := *r
	cp.query = url.Values{}
	for k, v := range r.query {
		cp.query[k] = append([]string(nil), v...)
	}
	for k, v := range q {
		cp.query[k] = append(cp.query[k], v...)
	}
	return &cp
}

func (r *Resource[T]) Path() string   { return r.path }
func (r *Resource[T]) Module() string { return r.module }

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	q := url.Values{}
	for k, v := range r.query {
		q[k] = v
	}
	if sess, ok := r.client.Session(); ok && sess.Tenant() != "" {
		q.Set("tenantId", sess.Tenant())
	}

	var items []T
	err := r.client.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   r.path,
		Query:  q,
		Module: r.module,
		Action: "View " + r.noun + " list",
	}, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Create(ctx context.Context, body interface{}) error {
	return r.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   r.path,
		Body:   body,
		Module: r.module,
		Action: "Add " + r.noun,
	}, nil)
}

func (r *Resource[T]) Update(ctx context.Context, id string, body interface{}) error {
	return r.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   r.path + "/" + url.PathEscape(id),
		Body:   body,
		Module: r.module,
		Action: "Update " + r.noun + " " + id,
	}, nil)
}

func (r *Resource[T]) Delete(ctx context.Context, item T) error {
	id := r.id(item)
	return r.client.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   r.path + "/" + url.PathEscape(id),
		Module: r.module,
		Action: "Delete " + r.noun + " " + id,
	}, nil)
}
