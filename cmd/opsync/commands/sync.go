package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/opsync/internal/config"
	opserrors "github.com/systmms/opsync/internal/errors"
	"github.com/systmms/opsync/internal/metrics"
	"github.com/systmms/opsync/internal/providers"
	"github.com/systmms/opsync/internal/resolve"
	"github.com/systmms/opsync/internal/run"
	"github.com/systmms/opsync/pkg/provider"
)

func NewSyncCommand(cfg *config.Config) *cobra.Command {
	return newSyncCommand(cfg, nil)
}

// NewSyncCommandWithProvider creates the sync command backed by a specific
// provider instance. This is primarily used for testing.
func NewSyncCommandWithProvider(cfg *config.Config, prov provider.Provider) *cobra.Command {
	return newSyncCommand(cfg, prov)
}

func newSyncCommand(cfg *config.Config, prov provider.Provider) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"run"},
		Short:   "Resolve secrets and write every configured file",
		Long: `Sync processes each configured item in order: templates have their
{{...}} placeholders resolved against 1Password, file items are copied
out of the vault, and the results are written to their destinations.

A target that fails leaves its destination untouched and does not stop
the others. If 1Password itself becomes unreachable the run stops and
the remaining targets are skipped.

Examples:
  # Sync everything in opsync.yaml
  opsync sync

  # Sync two named targets
  opsync sync --only app-env --only ssh-key`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			if err := cfg.Load(); err != nil {
				return err
			}

			targets, err := cfg.SelectTargets(only)
			if err != nil {
				return err
			}

			metrics.InitMetrics()

			p := prov
			if p == nil {
				p = providers.NewOnePasswordProvider(cfg.Logger)
			}

			// Fail before touching any target when the session is unusable
			ctx := context.Background()
			if err := p.Validate(ctx); err != nil {
				return opserrors.ProviderError(p.Name(), "preflight", err)
			}

			resolver := resolve.NewResolver(p, cfg.Logger)
			defer resolver.Close()

			runner := run.NewRunner(cfg, resolver)
			results := runner.Run(ctx, targets)

			printSyncSummary(results)

			if cfg.Logger.DebugEnabled() {
				metrics.Dump(cfg.Logger)
			}

			if run.Failed(results) {
				_, failed, skipped := countResults(results)
				if skipped > 0 {
					return fmt.Errorf("sync completed with %d failed and %d skipped targets", failed, skipped)
				}
				return fmt.Errorf("sync completed with %d failed targets", failed)
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Sync only the named targets (repeatable)")

	return cmd
}

// printSyncSummary shows per-target outcomes in a formatted table
func printSyncSummary(results []run.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "TARGET\tTYPE\tDESTINATION\tSTATUS\n")
	_, _ = fmt.Fprintf(w, "------\t----\t-----------\t------\n")

	for _, result := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			result.Target.Name,
			result.Target.Type,
			result.Target.Destination,
			statusCell(result),
		)
	}

	_ = w.Flush()

	written, failed, skipped := countResults(results)
	fmt.Printf("\nSummary: %d written, %d failed, %d skipped\n", written, failed, skipped)

	if failed > 0 {
		fmt.Printf("\nFailures:\n")
		i := 0
		for _, result := range results {
			if result.Err != nil {
				i++
				fmt.Printf("  %d. %s: %v\n", i, result.Target.Name, result.Err)
			}
		}
	}
}
