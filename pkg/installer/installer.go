// Package installer dispatches a validated manifest against the resolved
// host platform, running the matching platform entry's pre-install
// scripts and package-manager commands through a Runner collaborator.
package installer

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/offscale/liboffsetup/pkg/manifest"
	"github.com/offscale/liboffsetup/pkg/platform"
)

// Dispatcher selects and runs platform-specific install steps. Execution
// is strictly sequential and synchronous; the first failing command
// aborts the remaining steps of the entry unless the entry declares
// fail_silently.
type Dispatcher struct {
	runner Runner
}

// New builds a Dispatcher that executes commands through runner.
func New(runner Runner) *Dispatcher {
	return &Dispatcher{runner: runner}
}

// Install runs the install steps of the platform entry matching id. A
// manifest with dry_run set reports the intended actions and performs no
// external invocation. A missing or skipped entry is not an error.
func (d *Dispatcher) Install(ctx context.Context, m *manifest.Manifest, id platform.Identity) error {
	if m.Dependencies == nil {
		log.Info().Str("project", m.Name).Msg("manifest declares no dependencies")
		return nil
	}

	key := id.Name.ManifestKey()
	entry, ok := m.Dependencies.Platforms[key]
	if !ok {
		log.Warn().
			Str("project", m.Name).
			Str("platform", key).
			Msg("no platform entry matches the current host")
		return nil
	}

	if entry.SkipInstall {
		log.Info().Str("platform", key).Msg("platform entry marked skip_install")
		return nil
	}

	if n := len(m.Dependencies.Applications); n > 0 {
		// Application dependencies resolve through the platform entry's
		// package managers; there is no separate dispatch for them.
		log.Debug().Int("applications", n).Msg("application dependencies declared")
	}

	if entry.Source != nil && entry.Source.Download != nil {
		log.Info().
			Str("platform", key).
			Str("uri", entry.Source.Download.URI.String()).
			Msg("platform declares a source download")
	}

	if m.DryRun {
		reportDryRun(key, entry, id)
		return nil
	}

	proceed, err := d.runPreInstall(ctx, key, entry, id)
	if err != nil || !proceed {
		return err
	}
	return d.runSystemInstall(ctx, key, entry)
}

// runPreInstall executes the entry's pre_install lines in order through
// the host shell. With fail_silently set, a failing line is logged and
// the entry's remaining steps, the package-manager invocation included,
// are skipped without failing the dispatch; proceed reports whether the
// entry's later steps should still run.
func (d *Dispatcher) runPreInstall(ctx context.Context, key string, entry manifest.Platform, id platform.Identity) (proceed bool, err error) {
	shell, flag := shellFor(id)

	for _, line := range entry.PreInstall {
		log.Info().Str("platform", key).Str("command", line).Msg("running pre-install step")

		if err := d.runner.Run(ctx, shell, flag, line); err != nil {
			if entry.FailSilently {
				log.Warn().
					Str("platform", key).
					Str("command", line).
					Err(err).
					Msg("pre-install step failed, fail_silently set, skipping remaining steps")
				return false, nil
			}
			return false, &CommandError{Command: line, Platform: key, Err: err}
		}
	}
	return true, nil
}

// runSystemInstall invokes the preferred package manager declared under
// the entry's system map, honoring install_priority order.
func (d *Dispatcher) runSystemInstall(ctx context.Context, key string, entry manifest.Platform) error {
	mgr, args, ok := selectManager(entry)
	if !ok {
		return nil
	}

	log.Info().
		Str("platform", key).
		Str("manager", mgr).
		Strs("args", args).
		Msg("installing system packages")

	if err := d.runner.Run(ctx, mgr, args...); err != nil {
		if entry.FailSilently {
			log.Warn().
				Str("platform", key).
				Str("manager", mgr).
				Err(err).
				Msg("package-manager invocation failed, fail_silently set")
			return nil
		}
		return &CommandError{
			Command:  mgr + " " + strings.Join(args, " "),
			Platform: key,
			Err:      err,
		}
	}
	return nil
}

// selectManager picks the package manager to invoke: the first
// install_priority name declared in the system map, or, with no
// priority, the first declared manager in sorted-name order.
func selectManager(entry manifest.Platform) (string, []string, bool) {
	if len(entry.System) == 0 {
		return "", nil, false
	}

	for _, name := range entry.InstallPriority {
		if args, ok := entry.System[name]; ok {
			return name, args, true
		}
	}
	if len(entry.InstallPriority) > 0 {
		return "", nil, false
	}

	names := make([]string, 0, len(entry.System))
	for name := range entry.System {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0], entry.System[names[0]], true
}

// shellFor returns the shell invocation prefix for the platform:
// cmd /C for Windows entries, sh -c elsewhere.
func shellFor(id platform.Identity) (shell, flag string) {
	if id.Name == platform.NameWindows {
		return "cmd", "/C"
	}
	return "sh", "-c"
}

// reportDryRun logs the actions Install would take, without invoking
// anything.
func reportDryRun(key string, entry manifest.Platform, id platform.Identity) {
	shell, flag := shellFor(id)

	for _, line := range entry.PreInstall {
		log.Info().
			Str("platform", key).
			Str("shell", shell+" "+flag).
			Str("command", line).
			Msg("DRY-RUN: would run pre-install step")
	}
	if mgr, args, ok := selectManager(entry); ok {
		log.Info().
			Str("platform", key).
			Str("manager", mgr).
			Strs("args", args).
			Msg("DRY-RUN: would install system packages")
	}
}
