package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/incubation-console/internal/shell"
	"github.com/frahmantamala/incubation-console/pkg/logger"
	"github.com/spf13/cobra"
)

var shellLogLevel string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive console",
	Long:  `Open a terminal session against the incubation backend. Type 'help' for the command list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

func runShell(ctx context.Context) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Log lines share the terminal with the prompt; keep them quiet unless asked.
	logger.Init(shellLogLevel, cfg.Observability.Logging.Format)
	app := newApp(cfg, logger.LoggerWrapper())
	defer app.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	line := shell.NewLiner(app.Workspace)
	defer line.Close()

	sh := shell.New(shell.Deps{
		Auth:      app.Auth,
		Sessions:  app.Sessions,
		Workspace: app.Workspace,
		Matrix:    app.Matrix,
		Notices:   app.Notices,
		Monitor:   app.Monitor,
		ExportDir: cfg.Export.Dir,
		Logger:    app.Logger,
	})
	sh.Attach(app.Bus, os.Stdout)
	defer sh.Close()

	fmt.Fprintf(os.Stdout, "Incubation console %s, backend %s\n", Version, cfg.API.BaseURL)
	fmt.Fprintln(os.Stdout, "Type 'help' for commands.")

	runErr := sh.Run(ctx, line, os.Stdout)
	if app.Auth.Logout(context.WithoutCancel(ctx)) {
		fmt.Fprintln(os.Stdout, "Logged out.")
	}
	return runErr
}
