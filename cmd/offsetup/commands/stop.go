package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/offscale/liboffsetup/pkg/state"
)

func newStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		Aliases: []string{"down"},
		Short:   "Stop the project",
		Long: `Stop marks the project as no longer running. It exits non-zero with
a warning when the project is not started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := resolveManifest(cmd)
			if err != nil {
				return err
			}

			if m.DryRun {
				log.Info().Str("project", m.Name).Msg("DRY-RUN: what would be stopped")
				return nil
			}

			store, err := state.Open(cmd.Context(), stateDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.StopProject(cmd.Context(), m.Name)
			if errors.Is(err, state.ErrNotStarted) {
				log.Warn().Str("project", m.Name).Msg("project is not started")
				return fmt.Errorf("stop %s: %w", m.Name, err)
			}
			if err != nil {
				return err
			}

			log.Info().
				Str("project", m.Name).
				Str("run_id", run.ID).
				Msg("project stopped")
			return nil
		},
	}
}
