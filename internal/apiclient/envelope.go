package apiclient

import (
	"encoding/json"
	"net/url"
)

// Envelope is the uniform response wrapper of every backend endpoint. Only statusCode 200 is success.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (e Envelope) OK() bool { return e.StatusCode == 200 }

// Request describes one backend call. Form, when set, is sent form-urlencoded and wins over Body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Form   url.Values
	// Module and Action are free-text audit tags naming the UI context that triggered the call.
	Module string
	Action string
}

// Audit headers understood by the backend's audit log.
const (
	HeaderUserID    = "userid"
	HeaderModule    = "X-Module"
	HeaderAction    = "X-Action"
	HeaderRequestID = "X-Request-ID"
)
