package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/offscale/liboffsetup/pkg/manifest"
	"github.com/offscale/liboffsetup/pkg/platform"
	"github.com/offscale/liboffsetup/pkg/scanner"
)

func newNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "new",
		Aliases: []string{"init"},
		Short:   "Generate a basic manifest from the current environment",
		Long: `New scans the working directory for language dependencies, resolves
the identity of the current host and writes a starter manifest to the
configured path (offsetup.yml by default). An existing manifest is
never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := seedManifest()
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(m)
			if err != nil {
				return err
			}

			if dryRun {
				log.Info().Str("path", configPath).Msg("DRY-RUN: would write manifest")
				fmt.Print(string(out))
				return nil
			}

			f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				if os.IsExist(err) {
					return fmt.Errorf("%s already exists, refusing to overwrite", configPath)
				}
				return err
			}
			defer f.Close()

			if _, err := f.Write(out); err != nil {
				return err
			}
			log.Info().Str("path", configPath).Msg("manifest written")
			return nil
		},
	}
}

// seedManifest builds a starter manifest from the scanned source tree
// and the resolved host identity.
func seedManifest() (*manifest.Manifest, error) {
	id, err := platform.Current()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	m := &manifest.Manifest{
		Name:    filepath.Base(cwd),
		Version: "0.1.0",
		Dependencies: &manifest.Dependencies{
			Platforms: map[string]manifest.Platform{
				id.Name.ManifestKey(): {Versions: id.Versions},
			},
		},
	}

	langs := scanner.Scan(cwd)
	if langs == nil {
		log.Debug().Msg("no language dependencies discovered")
		return m, nil
	}

	m.Dependencies.Applications = map[string]manifest.Application{}
	for _, name := range langs.Names() {
		key := strings.ToLower(name)
		m.Dependencies.Applications[key] = manifest.Application{Pkg: key}
	}
	log.Info().Strs("languages", langs.Names()).Msg("discovered language dependencies")

	return m, nil
}
