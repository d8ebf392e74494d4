package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/farmfeed/ledger_service/internal/middleware"
	"github.com/spf13/cobra"
)

func newReconcileCmd(app App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute balances from the transaction log",
		Long: `Recompute stored balances from the full transaction log and overwrite them.
Without --farmer/--dealer every pair in the log is reconciled. The JSON report
is written to stdout; logs go to stderr. The exit status is non-zero when any
pair could not be reconciled.`,
		Example: `  ledgerctl reconcile
  ledgerctl reconcile --dry-run
  ledgerctl reconcile --farmer F1 --dealer D1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			farmerID, _ := cmd.Flags().GetString("farmer")
			dealerID, _ := cmd.Flags().GetString("dealer")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if (farmerID == "") != (dealerID == "") {
				return errors.New("--farmer and --dealer must be given together")
			}

			logger := commandLogger(cmd)
			ctx := middleware.WithLogger(cmd.Context(), logger)

			svc, closeFn, err := app.Open(ctx, logger)
			if err != nil {
				return fmt.Errorf("failed to open ledger store: %w", err)
			}
			defer closeFn()

			opts := domain.ReconcileOptions{DryRun: dryRun}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if farmerID != "" {
				res, err := svc.ReconcilePair(ctx, farmerID, dealerID, opts)
				if err != nil {
					return err
				}
				return enc.Encode(res)
			}

			report, runErr := svc.ReconcileAll(ctx, opts)
			if report != nil {
				if err := enc.Encode(report); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().String("farmer", "", "Farmer ID of a single pair")
	cmd.Flags().String("dealer", "", "Dealer ID of a single pair")
	cmd.Flags().Bool("dry-run", false, "Report drift without writing balances")
	return cmd
}
