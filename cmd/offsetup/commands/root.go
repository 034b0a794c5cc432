// Package commands implements the offsetup CLI surface.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/offscale/liboffsetup/pkg/manifest"
)

var (
	// Global flags
	configPath      string
	debug           bool
	dryRun          bool
	verbosity       int
	installPriority string
)

// stateDBPath is where project run state is recorded, relative to the
// working directory.
const stateDBPath = ".offsetup.db"

// errNotImplemented marks a subcommand whose non-dry-run behavior is not
// specified yet.
var errNotImplemented = errors.New("not implemented yet")

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "offsetup",
		Short: "offsetup - declarative project environment setup",
		Long: `offsetup installs, starts and stops a project from a declarative
manifest (offsetup.yml) describing applications, per-platform package
lists, source downloads and exposed ports, resolved against the
identity of the current host.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applyVerbosity()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "offsetup.yml", "manifest file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "show what would be done without altering anything")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose mode (-v, -vv, ...)")
	rootCmd.PersistentFlags().StringVar(&installPriority, "install-priority", "",
		"comma-separated package-manager priorities, overriding the manifest")

	rootCmd.AddCommand(newNewCommand())
	rootCmd.AddCommand(newInstallCommand())
	rootCmd.AddCommand(newUninstallCommand())
	rootCmd.AddCommand(newStartCommand())
	rootCmd.AddCommand(newStopCommand())

	return rootCmd
}

// applyVerbosity raises the global log level from the parsed flags.
func applyVerbosity() {
	switch {
	case verbosity >= 2:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case debug || verbosity == 1:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// cliOverrides translates parsed flags into resolver overrides. A flag
// contributes only when it was actually set on the command line.
func cliOverrides(cmd *cobra.Command) manifest.Overrides {
	flags := cmd.Root().PersistentFlags()

	ov := manifest.Overrides{}
	if flags.Changed("debug") {
		v := debug
		ov.Debug = &v
	}
	if flags.Changed("dry-run") {
		v := dryRun
		ov.DryRun = &v
	}
	if flags.Changed("install-priority") {
		// An all-empty value ("" or ",,") carries no priorities and
		// must not wipe the manifest's own lists.
		if list := splitList(installPriority); len(list) > 0 {
			ov.InstallPriority = list
		}
	}
	return ov
}

// resolveManifest loads the manifest with the current CLI overrides
// applied.
func resolveManifest(cmd *cobra.Command) (*manifest.Manifest, error) {
	return manifest.Resolve(configPath, os.Environ(), cliOverrides(cmd))
}

// splitList splits a comma-separated flag value, trimming whitespace.
func splitList(s string) []string {
	parts := strings.Split(strings.TrimSpace(s), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
