package cmd

import (
	"log/slog"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/apiclient"
	"github.com/frahmantamala/incubation-console/internal/application"
	"github.com/frahmantamala/incubation-console/internal/association"
	"github.com/frahmantamala/incubation-console/internal/auth"
	"github.com/frahmantamala/incubation-console/internal/bulk"
	"github.com/frahmantamala/incubation-console/internal/core/events"
	"github.com/frahmantamala/incubation-console/internal/crud"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/inactivity"
	"github.com/frahmantamala/incubation-console/internal/incubation"
	"github.com/frahmantamala/incubation-console/internal/obs"
	"github.com/frahmantamala/incubation-console/internal/role"
	"github.com/frahmantamala/incubation-console/internal/session"
	"github.com/frahmantamala/incubation-console/internal/transport"
	"github.com/frahmantamala/incubation-console/internal/transport/rest"
	"github.com/frahmantamala/incubation-console/internal/user"
	"github.com/frahmantamala/incubation-console/internal/workspace"
)

// App is one console: one session, its inactivity monitor and the screens it can open.
// Both the HTTP server and the shell are built on it.
type App struct {
	Config    *internal.Config
	Logger    *slog.Logger
	Bus       *events.EventBus
	Sessions  *session.Store
	Client    *apiclient.Client
	Auth      *auth.Service
	Notices   *inactivity.NoticeBoard
	Monitor   *inactivity.Monitor
	Matrix    *guard.Matrix
	Workspace *workspace.Workspace

	screens []rest.ScreenRoutes
}

func newApp(cfg *internal.Config, logger *slog.Logger) *App {
	if cfg.Observability.Metrics.Enabled {
		obs.Init()
	}

	bus := events.NewEventBus(logger)
	store := session.NewStore(bus, logger)
	client := apiclient.NewClient(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, store, logger)

	authSvc := auth.NewService(client, store, cfg.Session.LogoutTimeout, logger)
	board := inactivity.NewNoticeBoard()
	monitor := inactivity.NewMonitor(inactivity.Config{
		Timeout:       cfg.Session.InactivityTimeout,
		LogoutTimeout: cfg.Session.LogoutTimeout,
	}, store, authSvc, board, bus, logger)
	monitor.Attach()
	authSvc.SetGuard(monitor)

	matrix := guard.DefaultMatrix()
	for _, msg := range matrix.Inconsistencies() {
		logger.Warn("role matrix inconsistency", "detail", msg)
	}

	incubations := incubation.NewService(client, logger)
	applications := application.NewService(client, logger)
	groups := application.NewGroupService(client, logger)
	roles := role.NewService(client, logger)
	users := user.NewService(client, cfg.Session.ReservedUserIDs, logger)

	coordinator := bulk.NewCoordinator(cfg.API.BulkConcurrency, logger)
	operators := association.NewService(client, association.KindOperator, coordinator, logger)
	inspectors := association.NewService(client, association.KindInspector, coordinator, logger)

	ws := workspace.New(matrix, store, logger)
	ws.Register(incubations, applications, groups, roles, users, operators, inspectors)
	ws.Attach(bus)

	base := transport.NewBaseHandler(logger)
	return &App{
		Config:    cfg,
		Logger:    logger,
		Bus:       bus,
		Sessions:  store,
		Client:    client,
		Auth:      authSvc,
		Notices:   board,
		Monitor:   monitor,
		Matrix:    matrix,
		Workspace: ws,
		screens: []rest.ScreenRoutes{
			{Path: guard.ScreenIncubations, Routes: crud.NewHandler(base, incubations)},
			{Path: guard.ScreenApplications, Routes: crud.NewHandler(base, applications)},
			{Path: guard.ScreenApplicationGroups, Routes: crud.NewHandler(base, groups)},
			{Path: guard.ScreenRoles, Routes: crud.NewHandler(base, roles)},
			{Path: guard.ScreenUsers, Routes: crud.NewHandler(base, users)},
			{Path: guard.ScreenAssociations, Routes: association.NewHandler(base, operators, inspectors)},
		},
	}
}

// Close stops the idle timer and drops every mounted screen.
func (a *App) Close() {
	a.Monitor.Stop()
	a.Workspace.Detach()
	a.Workspace.UnmountAll()
}
