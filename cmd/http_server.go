package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/auth"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/transport"
	"github.com/frahmantamala/incubation-console/internal/transport/middleware"
	"github.com/frahmantamala/incubation-console/internal/transport/rest"
	"github.com/frahmantamala/incubation-console/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var httpServerCmd = &cobra.Command{
	Use:          "serve",
	Aliases:      []string{"server"},
	Short:        "Start HTTP server",
	Long:         `Serve the console over HTTP: login, session notices and the role-gated management screens`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	App    *App
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() error {
	deps, v, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return serve(deps, v)
}

// serve runs the server until a signal arrives or listening fails. The App is closed on
// every path out.
func serve(deps *Dependencies, v *viper.Viper) error {
	defer deps.App.Close()

	setupRoutes(deps)
	if v != nil {
		watchConfig(v, deps)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr, "backend", deps.Config.API.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if deps.App.Auth.Logout(ctx) {
			slog.Info("Open session logged out on shutdown")
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
	}

	slog.Info("Server stopped")
	return nil
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	app := deps.App
	base := transport.NewBaseHandler(deps.Logger)

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, rest.Dependencies{
		Logger:         deps.Logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Guard:          guard.New(app.Matrix, app.Sessions, app.Notices, deps.Logger),
		Auth:           auth.NewHandler(base, app.Auth, app.Sessions, app.Notices, app.Monitor, app.Matrix),
		Activity:       app.Monitor,
		Health:         rest.NewHealthHandler(cfg.API.BaseURL),
		Screens:        app.screens,
		LoginLimit:     middleware.RateLimit(base, cfg.Security.LoginRatePerSecond, cfg.Security.LoginBurst, cfg.Security.TrustForwardedFor),
		MetricsPath:    metricsPath,
	})
}

func initializeDependencies() (*Dependencies, *viper.Viper, error) {
	config, v, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	return &Dependencies{
		Config: config,
		App:    newApp(config, lg),
		Logger: lg,
		Router: chi.NewRouter(),
	}, v, nil
}

// watchConfig applies inactivity timeout and log level edits without a restart. Everything
// else in config.yml is read once at startup.
func watchConfig(v *viper.Viper, deps *Dependencies) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decodeConfig(v)
		if err != nil {
			slog.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}

		logger.SetLevel(cfg.Observability.Logging.Level)
		if cfg.Session.InactivityTimeout != deps.App.Monitor.Timeout() {
			deps.App.Monitor.SetTimeout(cfg.Session.InactivityTimeout)
			slog.Info("inactivity timeout changed", "timeout", cfg.Session.InactivityTimeout)
		}
	})
	v.WatchConfig()
}
