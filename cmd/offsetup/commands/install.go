package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/offscale/liboffsetup/pkg/installer"
	"github.com/offscale/liboffsetup/pkg/manifest"
	"github.com/offscale/liboffsetup/pkg/platform"
	"github.com/offscale/liboffsetup/pkg/state"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Aliases: []string{"i"},
		Short:   "Install the project and all its dependencies",
		Long: `Install resolves the manifest against the identity of the current
host and runs the matching platform entry's pre-install scripts and
package-manager commands.`,
		Example: `  # Install using ./offsetup.yml
  offsetup install

  # Show what would be installed
  offsetup install --dry-run

  # Prefer snap over apt regardless of the manifest
  offsetup install --install-priority snap,apt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := resolveManifest(cmd)
			if err != nil {
				return err
			}

			val := manifest.NewValidator()
			if errs := val.ValidateManifest(m); len(errs) > 0 {
				for _, ve := range errs {
					log.Error().Str("path", ve.Path).Str("code", ve.Code).Msg(ve.Message)
				}
				return fmt.Errorf("manifest validation failed with %d error(s)", len(errs))
			}

			id, err := platform.Current()
			if err != nil {
				return err
			}
			log.Info().
				Str("platform", string(id.Name)).
				Strs("versions", id.Versions).
				Str("arch", string(id.Architecture)).
				Msg("resolved host platform")

			dispatcher := installer.New(installer.ShellRunner{})

			if m.DryRun {
				log.Info().Str("project", m.Name).Msg("DRY-RUN: what would be installed")
				return dispatcher.Install(cmd.Context(), m, id)
			}

			store, err := state.Open(cmd.Context(), stateDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.BeginRun(cmd.Context(), m.Name, m.Version, state.RunKindInstall)
			if err != nil {
				return err
			}

			installErr := dispatcher.Install(cmd.Context(), m, id)
			if err := store.FinishRun(cmd.Context(), run.ID, installErr); err != nil {
				log.Warn().Err(err).Msg("failed to record install result")
			}
			return installErr
		},
	}
}
