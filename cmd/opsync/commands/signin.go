package commands

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/opsync/internal/config"
	opserrors "github.com/systmms/opsync/internal/errors"
)

func NewSigninCommand(cfg *config.Config) *cobra.Command {
	var (
		interactive bool
		accountName string
	)

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Assist with 1Password authentication",
		Long: `Show step-by-step 1Password authentication guidance, or run the signin
itself with --interactive.

Examples:
  opsync signin                # Show authentication steps
  opsync signin --interactive  # Run 'op signin' now`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check if CLI is installed
			if _, err := exec.LookPath("op"); err != nil {
				fmt.Println("❌ 1Password CLI not found")
				fmt.Println()
				fmt.Println("Install instructions:")
				fmt.Println("  brew install 1password-cli")
				fmt.Println("  # or")
				fmt.Println("  Visit: https://developer.1password.com/docs/cli/get-started/")
				return nil
			}

			fmt.Println("✅ 1Password CLI found")
			fmt.Println()

			if interactive {
				if cfg.NonInteractive {
					return opserrors.UserError{
						Message:    "Interactive signin is disabled in non-interactive mode",
						Suggestion: "Run 'op signin' directly, or drop --non-interactive",
					}
				}

				fmt.Println("🔄 Running op signin...")
				signinArgs := []string{"signin"}
				if accountName != "" {
					signinArgs = append(signinArgs, "--account", accountName)
				}
				return runCommand("op", signinArgs...)
			}

			fmt.Println("Authentication steps:")
			fmt.Println("  1. op signin                   # Sign in to your account")
			fmt.Println("  2. eval $(op signin)           # Load session variables")
			fmt.Println()
			fmt.Println("With the desktop app installed, enable CLI integration instead:")
			fmt.Println("  Settings → Developer → Integrate with 1Password CLI")
			fmt.Println()
			fmt.Println("Next: Run 'opsync doctor' to verify the session")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the signin command interactively")
	cmd.Flags().StringVar(&accountName, "account", "", "1Password account to sign in to")

	return cmd
}

// runCommand runs a CLI command wired to the user's terminal.
func runCommand(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return opserrors.WrapCommandNotFound(command)
		}
		return opserrors.CommandError{
			Command:    fmt.Sprintf("%s %s", command, strings.Join(args, " ")),
			Message:    err.Error(),
			Suggestion: "Check the command output above for details",
		}
	}

	return nil
}
