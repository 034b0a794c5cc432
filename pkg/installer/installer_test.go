package installer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/offscale/liboffsetup/pkg/manifest"
	"github.com/offscale/liboffsetup/pkg/platform"
)

// fakeRunner records every invocation and fails commands matching
// failOn.
type fakeRunner struct {
	calls  []string
	failOn string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	call := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, call)
	if r.failOn != "" && strings.Contains(call, r.failOn) {
		return fmt.Errorf("exit status 1")
	}
	return nil
}

func ubuntuIdentity() platform.Identity {
	return platform.Identity{
		Name:         platform.NameUbuntu,
		Versions:     []string{"18.04"},
		Architecture: platform.ArchX86_64,
	}
}

func testManifest(p manifest.Platform) *manifest.Manifest {
	return &manifest.Manifest{
		Name:    "redis",
		Version: "5.0.5",
		Dependencies: &manifest.Dependencies{
			Platforms: map[string]manifest.Platform{"ubuntu": p},
		},
	}
}

func TestInstallRunsPreInstallInOrder(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions:   []string{"18.04"},
		PreInstall: []string{"apt-get update", "apt-get install -y build-essential"},
	})

	if err := d.Install(context.Background(), m, ubuntuIdentity()); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	want := []string{
		"sh -c apt-get update",
		"sh -c apt-get install -y build-essential",
	}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %v, want %v", runner.calls, want)
	}
}

func TestInstallWindowsUsesCmd(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := &manifest.Manifest{
		Name:    "redis",
		Version: "5.0.5",
		Dependencies: &manifest.Dependencies{
			Platforms: map[string]manifest.Platform{
				"windows": {
					Versions:   []string{"10"},
					PreInstall: []string{"choco install redis-64"},
				},
			},
		},
	}
	id := platform.Identity{Name: platform.NameWindows, Versions: []string{"Windows 10", "18362", "1903"}}

	if err := d.Install(context.Background(), m, id); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	want := []string{"cmd /C choco install redis-64"}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %v, want %v", runner.calls, want)
	}
}

func TestInstallDryRunInvokesNothing(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions:   []string{"18.04"},
		PreInstall: []string{"apt-get update"},
		System:     manifest.System{"apt": {"install", "-y", "redis-server"}},
	})
	m.DryRun = true

	if err := d.Install(context.Background(), m, ubuntuIdentity()); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	if len(runner.calls) != 0 {
		t.Errorf("dry run must not invoke commands, got %v", runner.calls)
	}
}

func TestInstallFailFast(t *testing.T) {
	runner := &fakeRunner{failOn: "step-two"}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions:   []string{"18.04"},
		PreInstall: []string{"step-one", "step-two", "step-three"},
	})

	err := d.Install(context.Background(), m, ubuntuIdentity())

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.Command != "step-two" {
		t.Errorf("failing command = %q, want step-two", cmdErr.Command)
	}
	if len(runner.calls) != 2 {
		t.Errorf("remaining steps must not run after a failure, calls = %v", runner.calls)
	}
}

func TestInstallFailSilently(t *testing.T) {
	runner := &fakeRunner{failOn: "step-two"}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions:     []string{"18.04"},
		PreInstall:   []string{"step-one", "step-two", "step-three"},
		System:       manifest.System{"apt": {"install", "-y", "redis-server"}},
		FailSilently: true,
	})

	if err := d.Install(context.Background(), m, ubuntuIdentity()); err != nil {
		t.Fatalf("fail_silently entry must not fail the dispatch: %v", err)
	}

	// The entry's remaining steps, package-manager invocation included,
	// are skipped after the silent failure.
	want := []string{"sh -c step-one", "sh -c step-two"}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %v, want %v", runner.calls, want)
	}
}

func TestInstallSkipInstall(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions:    []string{"18.04"},
		PreInstall:  []string{"apt-get update"},
		SkipInstall: true,
	})

	if err := d.Install(context.Background(), m, ubuntuIdentity()); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("skip_install entry must not run, got %v", runner.calls)
	}
}

func TestInstallNoMatchingEntry(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := testManifest(manifest.Platform{Versions: []string{"18.04"}})
	id := platform.Identity{Name: platform.NameDebian}

	if err := d.Install(context.Background(), m, id); err != nil {
		t.Fatalf("missing entry is not an error: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no commands expected, got %v", runner.calls)
	}
}

func TestInstallSystemPackagesByPriority(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions:        []string{"18.04"},
		InstallPriority: []string{"snap", "apt"},
		System: manifest.System{
			"apt":  {"install", "-y", "redis-server"},
			"snap": {"install", "redis"},
		},
	})

	if err := d.Install(context.Background(), m, ubuntuIdentity()); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	want := []string{"snap install redis"}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %v, want %v", runner.calls, want)
	}
}

func TestInstallSystemPackagesNoPriority(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions: []string{"18.04"},
		System: manifest.System{
			"snap": {"install", "redis"},
			"apt":  {"install", "-y", "redis-server"},
		},
	})

	if err := d.Install(context.Background(), m, ubuntuIdentity()); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	// Sorted-name order makes the choice deterministic.
	want := []string{"apt install -y redis-server"}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %v, want %v", runner.calls, want)
	}
}

func TestInstallPriorityNamesNoDeclaredManager(t *testing.T) {
	runner := &fakeRunner{}
	d := New(runner)

	m := testManifest(manifest.Platform{
		Versions:        []string{"18.04"},
		InstallPriority: []string{"dnf"},
		System:          manifest.System{"apt": {"install", "-y", "redis-server"}},
	})

	if err := d.Install(context.Background(), m, ubuntuIdentity()); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no priority manager is declared, nothing should run, got %v", runner.calls)
	}
}
