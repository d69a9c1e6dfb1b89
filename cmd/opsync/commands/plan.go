package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/run"
)

func NewPlanCommand(cfg *config.Config) *cobra.Command {
	var (
		only       []string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what sync would look up and write (no secrets fetched)",
		Long: `Plan parses every template, merges target defaults into each placeholder,
and lists the lookups a sync would perform. Nothing is fetched, so a
plan works without a 1Password session. This is useful for debugging
configuration and reviewing which secrets a sync depends on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			if err := cfg.Load(); err != nil {
				return err
			}

			targets, err := cfg.SelectTargets(only)
			if err != nil {
				return err
			}

			plans := run.PlanTargets(targets)

			// Output results
			if outputJSON {
				return outputPlanJSON(plans)
			}
			return outputPlanTable(plans)
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Plan only the named targets (repeatable)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")

	return cmd
}

// outputPlanJSON outputs the plan as JSON
func outputPlanJSON(plans []run.TargetPlan) error {
	rows := make([]map[string]interface{}, 0, len(plans))
	lookups := 0
	errorCount := 0

	for _, plan := range plans {
		row := map[string]interface{}{
			"target":      plan.Target.Name,
			"type":        plan.Target.Type,
			"destination": plan.Target.Destination,
		}

		keys := make([]string, 0, len(plan.Keys))
		for _, key := range plan.Keys {
			keys = append(keys, key.String())
		}
		row["lookups"] = keys
		lookups += len(keys)

		if plan.Err != nil {
			row["error"] = plan.Err.Error()
			errorCount++
		}

		rows = append(rows, row)
	}

	output := map[string]interface{}{
		"targets": rows,
		"summary": map[string]interface{}{
			"total_targets": len(plans),
			"total_lookups": lookups,
			"error_count":   errorCount,
		},
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// outputPlanTable outputs the plan as a formatted table
func outputPlanTable(plans []run.TargetPlan) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "TARGET\tTYPE\tLOOKUP\tSTATUS\n")
	_, _ = fmt.Fprintf(w, "------\t----\t------\t------\n")

	lookups := 0
	errorCount := 0
	for _, plan := range plans {
		if plan.Err != nil {
			errorCount++
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\t✗ error\n", plan.Target.Name, plan.Target.Type)
			continue
		}

		for _, key := range plan.Keys {
			lookup := key.String()
			if !plan.Target.IsTemplate() {
				lookup += " (document)"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t✓ ok\n", plan.Target.Name, plan.Target.Type, lookup)
			lookups++
		}
	}

	_ = w.Flush()

	// Print summary
	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total targets: %d\n", len(plans))
	fmt.Printf("  Total lookups: %d\n", lookups)

	if errorCount > 0 {
		fmt.Printf("  Errors: %d\n", errorCount)
		fmt.Printf("\nErrors:\n")
		i := 0
		for _, plan := range plans {
			if plan.Err != nil {
				i++
				fmt.Printf("  %d. %s: %s\n", i, plan.Target.Name, plan.Err.Error())
			}
		}

		fmt.Printf("\nNext steps:\n")
		fmt.Printf("  • Fix the template or configuration errors and plan again\n")
		fmt.Printf("  • Run 'opsync doctor' to check the 1Password session\n")

		return fmt.Errorf("plan completed with %d errors", errorCount)
	}

	fmt.Printf("\n✓ All targets ready to sync!\n")
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  • Run 'opsync sync' to write the files\n")
	fmt.Printf("  • Run 'opsync sync --only <target>' for a single target\n")

	return nil
}
