package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/incubation-console/internal/auth"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/obs"
	"github.com/frahmantamala/incubation-console/internal/transport"
	"github.com/frahmantamala/incubation-console/internal/transport/middleware"
	"github.com/frahmantamala/incubation-console/internal/transport/swagger"
)

// Mounter registers a screen's routes on the router scoped to its path.
type Mounter interface {
	Mount(r chi.Router)
}

// ScreenRoutes binds a guarded console path to the handler serving it.
type ScreenRoutes struct {
	Path   string
	Routes Mounter
}

type Dependencies struct {
	Logger         *slog.Logger
	AllowedOrigins string
	Guard          *guard.Guard
	Auth           *auth.Handler
	Activity       middleware.ActivityRecorder
	Health         *HealthHandler
	Screens        []ScreenRoutes
	// LoginLimit wraps POST /login; nil disables rate limiting.
	LoginLimit  func(http.Handler) http.Handler
	MetricsPath string
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	logger := deps.Logger

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))
	if deps.MetricsPath != "" {
		router.Use(obs.Instrument)
		router.Handle(deps.MetricsPath, obs.Handler())
	}

	router.Get(swagger.DocumentPath, swagger.DocumentHandler)
	router.Handle("/swagger/*", swagger.Handler())

	if deps.Health != nil {
		router.Get("/health", deps.Health.healthCheckHandler)
		router.Get("/ping", deps.Health.pingHandler)
	}

	// Everything below is operator interaction and resets the idle deadline.
	router.Group(func(r chi.Router) {
		if deps.Activity != nil {
			r.Use(middleware.Activity(deps.Activity))
		}

		r.Get(guard.ScreenLogin, deps.Auth.Session)
		r.Group(func(lr chi.Router) {
			if deps.LoginLimit != nil {
				lr.Use(deps.LoginLimit)
			}
			lr.Post(guard.ScreenLogin, deps.Auth.Login)
		})
		r.Post("/logout", deps.Auth.Logout)
		r.Get("/session", deps.Auth.Session)
		r.Post("/session/acknowledge", deps.Auth.Acknowledge)

		r.With(deps.Guard.Require(guard.ScreenDashboard)).Get(guard.ScreenDashboard, deps.Auth.Dashboard)
		r.With(deps.Guard.Require(guard.ScreenStartupDashboard)).Get(guard.ScreenStartupDashboard, deps.Auth.Dashboard)
		r.With(deps.Guard.Require(guard.ScreenChat)).Get(guard.ScreenChat, chatPlaceholder(deps.Guard.BaseHandler))

		for _, s := range deps.Screens {
			screen := s
			r.Route(screen.Path, func(sr chi.Router) {
				sr.Use(deps.Guard.Require(screen.Path))
				screen.Routes.Mount(sr)
			})
		}
	})
}

// chatPlaceholder stands in for the chat screen, whose content lives in another service.
func chatPlaceholder(base *transport.BaseHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base.WriteJSON(w, http.StatusOK, map[string]string{
			"screen":  guard.ScreenChat,
			"message": "Chat is served by the messaging service.",
		})
	}
}
