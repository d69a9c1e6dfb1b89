package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/permissions"
	"github.com/systmms/opsync/internal/providers"
	"github.com/systmms/opsync/internal/run"
	"github.com/systmms/opsync/pkg/provider"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	return newDoctorCommand(cfg, nil)
}

// NewDoctorCommandWithProvider creates the doctor command backed by a
// specific provider instance. This is primarily used for testing.
func NewDoctorCommandWithProvider(cfg *config.Config, prov provider.Provider) *cobra.Command {
	return newDoctorCommand(cfg, prov)
}

// CheckResult represents the outcome of one doctor check
type CheckResult struct {
	Name        string
	Status      string // ok, error, skipped
	Detail      string
	Suggestions []string
}

func newDoctorCommand(cfg *config.Config, prov provider.Provider) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and 1Password connectivity",
		Long: `Verify that opsync is ready to run.

This command checks:
- Configuration file validity
- 1Password CLI installation and session
- Template source files
- Modes on already-written destination files

Nothing is written; doctor is safe to run at any time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Logger.Info("Checking opsync configuration...")

			p := prov
			if p == nil {
				p = providers.NewOnePasswordProvider(cfg.Logger)
			}

			results := make([]CheckResult, 0)
			results = append(results, checkConfig(cfg))
			results = append(results, checkProvider(p)...)
			results = append(results, checkSources(cfg)...)
			results = append(results, checkDestinations(cfg)...)

			displayCheckResults(results, verbose)

			// Summary
			healthy := 0
			for _, result := range results {
				if result.Status != "error" {
					healthy++
				}
			}

			fmt.Printf("\nSummary: %d/%d checks passed\n", healthy, len(results))
			if healthy < len(results) {
				return fmt.Errorf("some checks failed")
			}

			cfg.Logger.Info("✓ All systems operational!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed suggestions for failed checks")

	return cmd
}

// checkConfig loads the config file and reports on it
func checkConfig(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "config"}

	if err := cfg.Load(); err != nil {
		result.Status = "error"
		result.Detail = err.Error()
		result.Suggestions = []string{
			"Run 'opsync init' to create a starter config",
			"Check the YAML syntax and field names",
		}
		return result
	}

	result.Status = "ok"
	result.Detail = fmt.Sprintf("%d targets in %s", len(cfg.Definition.Items), cfg.Path)
	return result
}

// checkProvider validates the CLI installation and session in one pass
func checkProvider(p provider.Provider) []CheckResult {
	cli := CheckResult{Name: "1password-cli"}
	session := CheckResult{Name: "session"}

	err := p.Validate(context.Background())

	var authErr *provider.AuthError
	var unavailErr *provider.UnavailableError
	switch {
	case err == nil:
		cli.Status = "ok"
		cli.Detail = "op CLI found"
		session.Status = "ok"
		session.Detail = "signed in"

	case errors.As(err, &unavailErr):
		cli.Status = "error"
		cli.Detail = unavailErr.Message
		cli.Suggestions = []string{
			"Install the 1Password CLI: https://developer.1password.com/docs/cli/get-started/",
			"Ensure 'op' is in your PATH",
		}
		session.Status = "skipped"
		session.Detail = "cannot check without the CLI"

	case errors.As(err, &authErr):
		cli.Status = "ok"
		cli.Detail = "op CLI found"
		session.Status = "error"
		session.Detail = authErr.Message
		session.Suggestions = []string{
			"Run 'opsync signin' for guided authentication",
			"Or run 'eval $(op signin)' directly",
		}

	default:
		cli.Status = "ok"
		cli.Detail = "op CLI found"
		session.Status = "error"
		session.Detail = err.Error()
		session.Suggestions = []string{"Run 'opsync signin' for guided authentication"}
	}

	return []CheckResult{cli, session}
}

// checkSources verifies that every template source file exists
func checkSources(cfg *config.Config) []CheckResult {
	if cfg.Definition == nil {
		return nil
	}

	results := make([]CheckResult, 0)
	for _, target := range cfg.Definition.Items {
		if !target.IsTemplate() {
			continue
		}

		result := CheckResult{Name: "source: " + target.Name}

		path, err := run.ExpandPath(target.Source)
		if err == nil {
			_, err = os.Stat(path)
		}
		if err != nil {
			result.Status = "error"
			result.Detail = err.Error()
			result.Suggestions = []string{
				fmt.Sprintf("Create the template at '%s' or fix the source path", target.Source),
			}
		} else {
			result.Status = "ok"
			result.Detail = target.Source
		}

		results = append(results, result)
	}

	return results
}

// checkDestinations flags already-written destinations whose modes were
// loosened after sync wrote them
func checkDestinations(cfg *config.Config) []CheckResult {
	if cfg.Definition == nil {
		return nil
	}

	checker := permissions.NewChecker(cfg.Logger)

	results := make([]CheckResult, 0)
	for _, finding := range checker.Check(cfg.Definition.Items) {
		results = append(results, CheckResult{
			Name:   "destination: " + finding.Target,
			Status: "error",
			Detail: fmt.Sprintf("mode %04o is wider than configured %04o", uint32(finding.Mode), uint32(finding.Want)),
			Suggestions: []string{
				fmt.Sprintf("Run 'chmod %04o %s' or rerun 'opsync sync'", uint32(finding.Want), finding.Path),
			},
		})
	}
	return results
}

// displayCheckResults shows check outcomes in a formatted table
func displayCheckResults(results []CheckResult, verbose bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tDETAIL\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t------\n")

	for _, result := range results {
		status := result.Status
		switch result.Status {
		case "ok":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		default:
			status = "- " + status
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", result.Name, status, result.Detail)
	}

	_ = w.Flush()

	// Show remediation detail if verbose
	if !verbose {
		return
	}

	for _, result := range results {
		if result.Status == "error" && len(result.Suggestions) > 0 {
			fmt.Printf("\n%s suggestions:\n", result.Name)
			for _, suggestion := range result.Suggestions {
				fmt.Printf("  • %s\n", suggestion)
			}
		}
	}
}
