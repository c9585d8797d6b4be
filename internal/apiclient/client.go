package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/obs"
	"github.com/frahmantamala/incubation-console/internal/session"
)

const maxResponseBytes = 32 << 20

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the single gateway to the incubation backend. It attaches the session's
// credentials and audit tags to every call and unwraps the response envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    session.Reader
	logger     *slog.Logger
}

func NewClient(cfg Config, sess session.Reader, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    sess,
		logger:     logger,
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends req and decodes the envelope's data into out (which may be nil).
//
// Errors are *internal.AppError of type NETWORK_ERROR when no response arrived and
// APPLICATION_ERROR when the envelope reports failure. A cancelled ctx is returned as is.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	start := time.Now()
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return internal.NewInternalError("failed to build backend request", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		c.logger.Warn("backend unreachable",
			"module", req.Module,
			"action", req.Action,
			"method", httpReq.Method,
			"path", req.Path,
			"error", err)
		obs.ObserveBackendRequest(req.Module, req.Action, obs.OutcomeNetwork, time.Since(start))
		return internal.NewNetworkError(err)
	}
	defer resp.Body.Close()

	err = c.decode(resp, out)
	took := time.Since(start)
	if err != nil {
		obs.ObserveBackendRequest(req.Module, req.Action, obs.OutcomeApplication, took)
		c.logger.Warn("backend request failed",
			"module", req.Module,
			"action", req.Action,
			"method", httpReq.Method,
			"path", req.Path,
			"http_status", resp.StatusCode,
			"error", err)
		return err
	}

	obs.ObserveBackendRequest(req.Module, req.Action, obs.OutcomeOK, took)
	c.logger.Debug("backend request",
		"module", req.Module,
		"action", req.Action,
		"method", httpReq.Method,
		"path", req.Path,
		"duration_ms", took.Milliseconds())
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(req.Body); err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = buf
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	httpReq.Header.Set(HeaderModule, req.Module)
	httpReq.Header.Set(HeaderAction, req.Action)

	if c.session != nil {
		if sess, ok := c.session.Current(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
			httpReq.Header.Set(HeaderUserID, sess.UserID)
		}
	}
	return httpReq, nil
}

func (c *Client) decode(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return internal.NewNetworkError(fmt.Errorf("read response: %w", err))
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		appErr := internal.NewApplicationError("", internal.ErrCodeMalformedResponse)
		if resp.StatusCode >= http.StatusBadRequest {
			appErr.Message = fmt.Sprintf("The server responded with HTTP %d. %s", resp.StatusCode, internal.MsgGenericFailure)
		}
		return appErr.WithCause(err)
	}

	if !env.OK() {
		return internal.NewApplicationError(env.Message, internal.ErrCodeBackendRejected).
			WithDetails(map[string]interface{}{"statusCode": env.StatusCode})
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return internal.NewApplicationError("", internal.ErrCodeMalformedResponse).WithCause(err)
	}
	return nil
}

// Session returns the session the client currently sends credentials for.
func (c *Client) Session() (session.Session, bool) {
	if c.session == nil {
		return session.Session{}, false
	}
	return c.session.Current()
}
