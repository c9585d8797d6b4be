package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/apiclient"
	"github.com/frahmantamala/incubation-console/internal/session"
)

func TestAPIClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Client Suite")
}

type staticSession struct {
	sess session.Session
	ok   bool
}

func (s staticSession) Current() (session.Session, bool) { return s.sess, s.ok }

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		client   *apiclient.Client
		logger   *slog.Logger
		sessions staticSession
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"statusCode":200,"message":"ok","data":null}`)
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		sessions = staticSession{sess: session.Session{Token: "tok-1", UserID: "42"}, ok: true}
		client = apiclient.NewClient(apiclient.Config{BaseURL: server.URL + "/", Timeout: 2 * time.Second}, sessions, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("attaches credentials and audit tags", func() {
		var got http.Header
		var path string
		handler = func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			path = r.URL.RequestURI()
			_, _ = io.WriteString(w, `{"statusCode":200,"message":"ok","data":[]}`)
		}

		err := client.Do(context.Background(), apiclient.Request{
			Path:   "/incubations",
			Query:  url.Values{"tenantId": {"t1"}},
			Module: "Incubation Management",
			Action: "List incubations",
		}, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(path).To(Equal("/incubations?tenantId=t1"))
		Expect(got.Get("Authorization")).To(Equal("Bearer tok-1"))
		Expect(got.Get("userid")).To(Equal("42"))
		Expect(got.Get("X-Module")).To(Equal("Incubation Management"))
		Expect(got.Get("X-Action")).To(Equal("List incubations"))
		Expect(got.Get("X-Request-ID")).NotTo(BeEmpty())
	})

	It("omits credentials without a session", func() {
		var auth string
		handler = func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, `{"statusCode":200,"message":"ok"}`)
		}
		anon := apiclient.NewClient(apiclient.Config{BaseURL: server.URL}, staticSession{}, logger)

		Expect(anon.Do(context.Background(), apiclient.Request{Path: "/auth/login"}, nil)).To(Succeed())
		Expect(auth).To(BeEmpty())
	})

	It("decodes data when statusCode is 200", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"statusCode":200,"message":"ok","data":{"name":"Hub"}}`)
		}
		var out struct {
			Name string `json:"name"`
		}
		Expect(client.Do(context.Background(), apiclient.Request{Path: "/x"}, &out)).To(Succeed())
		Expect(out.Name).To(Equal("Hub"))
	})

	It("sends JSON bodies", func() {
		var body map[string]string
		var contentType string
		handler = func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, _ = io.WriteString(w, `{"statusCode":200}`)
		}
		err := client.Do(context.Background(), apiclient.Request{
			Method: http.MethodPost,
			Path:   "/roles",
			Body:   map[string]string{"name": "Auditor"},
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(contentType).To(Equal("application/json"))
		Expect(body).To(HaveKeyWithValue("name", "Auditor"))
	})

	It("sends form bodies form-urlencoded", func() {
		var email, contentType string
		handler = func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			_ = r.ParseForm()
			email = r.PostForm.Get("email")
			_, _ = io.WriteString(w, `{"statusCode":200}`)
		}
		err := client.Do(context.Background(), apiclient.Request{
			Method: http.MethodPost,
			Path:   "/auth/login",
			Form:   url.Values{"email": {"a@b.io"}},
			Body:   map[string]string{"ignored": "yes"},
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(contentType).To(Equal("application/x-www-form-urlencoded"))
		Expect(email).To(Equal("a@b.io"))
	})

	It("returns an application error carrying the server message", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"statusCode":409,"message":"Name already taken","data":null}`)
		}
		err := client.Do(context.Background(), apiclient.Request{Path: "/x"}, nil)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeApplication))
		Expect(appErr.Message).To(Equal("Name already taken"))
	})

	It("falls back to a generic message when the server gives none", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"statusCode":500}`)
		}
		err := client.Do(context.Background(), apiclient.Request{Path: "/x"}, nil)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Message).To(Equal(internal.MsgGenericFailure))
	})

	It("treats a non-envelope body as an application error", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		}
		err := client.Do(context.Background(), apiclient.Request{Path: "/x"}, nil)
		Expect(internal.IsType(err, internal.ErrorTypeApplication)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("HTTP 502"))
	})

	It("distinguishes network failures", func() {
		server.Close()
		err := client.Do(context.Background(), apiclient.Request{Path: "/x"}, nil)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeNetwork))
		Expect(appErr.Message).To(Equal(internal.MsgNetworkFailure))
	})

	It("returns context cancellation untouched", func() {
		release := make(chan struct{})
		handler = func(w http.ResponseWriter, r *http.Request) {
			<-release
			_, _ = io.WriteString(w, `{"statusCode":200}`)
		}
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		err := client.Do(ctx, apiclient.Request{Path: "/slow"}, nil)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
