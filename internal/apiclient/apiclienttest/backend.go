// Package apiclienttest provides a scripted stand-in for the incubation backend.
package apiclienttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Call is one request the backend received.
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// Reply builds the envelope sent back for a route.
type Reply func(r *http.Request, body []byte) (statusCode int, message string, data interface{})

// OK replies with statusCode 200 and data.
func OK(data interface{}) Reply {
	return func(*http.Request, []byte) (int, string, interface{}) { return 200, "success", data }
}

// Fail replies with an application-level failure.
func Fail(statusCode int, message string) Reply {
	return func(*http.Request, []byte) (int, string, interface{}) { return statusCode, message, nil }
}

type Backend struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]Reply
	calls  []Call
}

func NewBackend() *Backend {
	b := &Backend{routes: make(map[string]Reply)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// Handle scripts the reply for "METHOD /path". Unscripted routes answer 404 in the envelope.
func (b *Backend) Handle(method, path string, reply Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = reply
}

func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the calls matching method and path.
func (b *Backend) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	reply, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	status, message, data := 404, "route not scripted", interface{}(nil)
	if ok {
		status, message, data = reply(r, body)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": status,
		"message":    message,
		"data":       data,
	})
}
