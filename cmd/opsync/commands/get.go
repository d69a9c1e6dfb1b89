package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/providers"
	"github.com/systmms/opsync/internal/resolve"
	"github.com/systmms/opsync/pkg/provider"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	return newGetCommand(cfg, nil)
}

// NewGetCommandWithProvider creates the get command backed by a specific
// provider instance. This is primarily used for testing.
func NewGetCommandWithProvider(cfg *config.Config, prov provider.Provider) *cobra.Command {
	return newGetCommand(cfg, prov)
}

func newGetCommand(cfg *config.Config, prov provider.Provider) *cobra.Command {
	var (
		vaultName   string
		accountName string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "get <item> <field>",
		Short: "Fetch a single field and print it to stdout",
		Long: `Retrieve one field of one item and print the raw value. By default only
the value is printed, making the command suitable for scripting. No
config file is needed.

Examples:
  # Print a password
  opsync get db password --vault Production

  # Get a value with metadata in JSON format
  opsync get db password --vault Production --json

  # Use in scripts
  export DB_PASSWORD=$(opsync get db password --vault Production)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, field := args[0], args[1]

			p := prov
			if p == nil {
				p = providers.NewOnePasswordProvider(cfg.Logger)
			}

			resolver := resolve.NewResolver(p, cfg.Logger)
			defer resolver.Close()

			key := resolve.Key{
				Account: accountName,
				Vault:   vaultName,
				Item:    item,
				Field:   field,
			}

			value, err := resolver.Lookup(context.Background(), key)
			if err != nil {
				return err
			}

			if jsonOutput {
				output := map[string]interface{}{
					"item":  item,
					"field": field,
					"value": value,
				}
				if vaultName != "" {
					output["vault"] = vaultName
				}
				if accountName != "" {
					output["account"] = accountName
				}

				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(output)
			}

			// Raw value output (default)
			fmt.Print(value)
			return nil
		},
	}

	cmd.Flags().StringVar(&vaultName, "vault", "", "Vault to search (default: all vaults)")
	cmd.Flags().StringVar(&accountName, "account", "", "1Password account to query")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format with metadata")

	return cmd
}
