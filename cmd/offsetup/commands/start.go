package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/offscale/liboffsetup/pkg/manifest"
	"github.com/offscale/liboffsetup/pkg/platform"
	"github.com/offscale/liboffsetup/pkg/state"
)

func newStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"up", "run"},
		Short:   "Run the project",
		Long: `Start records the project as running. When the manifest has no
platform entry for the current host, the user is told to run install
first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := resolveManifest(cmd)
			if err != nil {
				return err
			}

			id, err := platform.Current()
			if err != nil {
				return err
			}

			if m.Dependencies == nil || !hasPlatformEntry(m.Dependencies.Platforms, id) {
				log.Warn().
					Str("platform", id.Name.ManifestKey()).
					Msg("no platform entry for this host; run `offsetup install` after adding one")
			}

			if m.DryRun {
				log.Info().Str("project", m.Name).Msg("DRY-RUN: what would be started")
				return nil
			}

			store, err := state.Open(cmd.Context(), stateDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.BeginRun(cmd.Context(), m.Name, m.Version, state.RunKindStart)
			if err != nil {
				return err
			}

			log.Info().
				Str("project", m.Name).
				Str("run_id", run.ID).
				Msg("project started")
			return nil
		},
	}
}

func hasPlatformEntry(platforms map[string]manifest.Platform, id platform.Identity) bool {
	_, ok := platforms[id.Name.ManifestKey()]
	return ok
}
