package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/core/services"
	"github.com/farmfeed/ledger_service/internal/platform/config"
	"github.com/farmfeed/ledger_service/internal/platform/storage"
	"github.com/farmfeed/ledger_service/pkg/logging"
	"github.com/spf13/cobra"
)

// Opener provides the reconciliation service for one command run.
// The returned func releases whatever the service holds.
type Opener func(ctx context.Context, logger *slog.Logger) (portssvc.ReconciliationSvc, func(), error)

// App holds the command dependencies.
type App struct {
	Out  io.Writer
	Err  io.Writer
	Open Opener
}

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd(app App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}
	if app.Open == nil {
		app.Open = OpenFromConfig
	}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the farmer–dealer ledger",
		Long: `ledgerctl runs maintenance tasks against the ledger store configured through
the same environment variables as the API server (PGSQL_URL, STORE_DRIVER, ...).`,
		SilenceUsage: true,
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	root.PersistentFlags().String("log-level", "", "Override LOG_LEVEL for this run")

	root.AddCommand(newReconcileCmd(app))
	return root
}

// OpenFromConfig loads the environment configuration and opens the configured store.
func OpenFromConfig(ctx context.Context, logger *slog.Logger) (portssvc.ReconciliationSvc, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewReconciliationService(
		repos.LedgerRepo,
		services.WithReconcileConcurrency(cfg.ReconcileConcurrency),
		services.WithReconcilePageSize(cfg.ReconcilePageSize),
	)
	closeFn := func() {}
	if repos.Close != nil {
		closeFn = repos.Close
	}
	return svc, closeFn, nil
}

func commandLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger, _ := logging.New(logging.Options{Level: level, Output: cmd.ErrOrStderr()})
	return logger
}
