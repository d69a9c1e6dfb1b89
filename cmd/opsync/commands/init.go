package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/opsync/internal/config"
)

const exampleConfig = `version: 1

# Files opsync manages. Each item either renders a template or copies a
# document out of 1Password.
items:
  # Render a template: every {{...}} placeholder is replaced with the
  # named field's value. Placeholders name up to vault.item.field;
  # shorter forms fall back to the target's defaults:
  #   {{password}}                field of this target's item
  #   {{db.password}}             item.field in this target's vault
  #   {{Production.db.password}}  fully scoped
  - name: app-env
    type: template
    source: ./templates/app.env.tpl
    destination: ./.env
    vault: Development
    # item: app          # default item for bare {{field}} placeholders
    # mode: "0600"       # octal file mode, quoted

  # Copy a document item byte for byte.
  # - name: ssh-key
  #   type: file
  #   destination: ~/.ssh/deploy_key
  #   vault: Infra
  #   item: Deploy Key
  #   mode: "0400"

  # Scope every lookup of a target to one signed-in account:
  # - name: work-env
  #   type: template
  #   source: ./templates/work.env.tpl
  #   destination: ./.env.work
  #   account: myteam.1password.com
  #   vault: Engineering
`

func NewInitCommand(cfg *config.Config) *cobra.Command {
	var example string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new opsync configuration",
		Long:  "Create an opsync.yaml file with a commented example configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check if a config already exists
			if _, err := os.Stat(cfg.Path); err == nil {
				return fmt.Errorf("%s already exists. Remove it first if you want to reinitialize", cfg.Path)
			}

			// TODO: Support language-specific starter templates
			content := exampleConfig

			// Write the file
			if err := os.WriteFile(cfg.Path, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cfg.Logger.Info("Created %s with an example target", cfg.Path)
			cfg.Logger.Info("Next steps:")
			cfg.Logger.Info("  1. Edit %s to describe your templates and documents", cfg.Path)
			cfg.Logger.Info("  2. Run 'opsync doctor' to verify the 1Password session")
			cfg.Logger.Info("  3. Run 'opsync plan' to preview the lookups")
			cfg.Logger.Info("  4. Run 'opsync sync' to write the files")

			return nil
		},
	}

	cmd.Flags().StringVar(&example, "example", "", "Example configuration stack (e.g., 'node', 'go', 'python')")

	return cmd
}
