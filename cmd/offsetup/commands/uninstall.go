package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newUninstallCommand() *cobra.Command {
	var removeShared bool

	cmd := &cobra.Command{
		Use:     "uninstall",
		Aliases: []string{"rm", "remove"},
		Short:   "Remove the project",
		Long: `Uninstall removes the project. Use --remove-shared to also remove
shared dependencies (e.g. cmake).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := resolveManifest(cmd)
			if err != nil {
				return err
			}

			if m.DryRun {
				log.Info().
					Str("project", m.Name).
					Bool("remove_shared", removeShared).
					Msg("DRY-RUN: what would be removed")
				return nil
			}

			return fmt.Errorf("uninstall: %w", errNotImplemented)
		},
	}

	cmd.Flags().BoolVar(&removeShared, "remove-shared", false, "also remove shared dependencies")

	return cmd
}
