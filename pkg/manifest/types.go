package manifest

import (
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

// Manifest is the typed, in-memory form of an offsetup.yml project
// manifest. It is built once per invocation by Resolve and treated as
// immutable afterwards (the CLI install-priority override is applied
// during resolution, not after).
type Manifest struct {
	// Name is the project name.
	Name string `yaml:"name" validate:"required"`

	// Version is the project version string.
	Version string `yaml:"version" validate:"required"`

	// Dependencies declares applications and per-platform setup.
	Dependencies *Dependencies `yaml:"dependencies,omitempty"`

	// Exposes declares network ports the project exposes.
	Exposes *Exposes `yaml:"exposes,omitempty"`

	// Debug enables debug output. CLI-settable.
	Debug bool `yaml:"debug,omitempty"`

	// DryRun reports intended actions without performing them. CLI-settable.
	DryRun bool `yaml:"dry_run,omitempty"`
}

// Dependencies groups application dependencies and platform entries.
type Dependencies struct {
	// Applications maps an application name to its dependency declaration.
	Applications map[string]Application `yaml:"applications,omitempty"`

	// Platforms maps a platform key (e.g. "ubuntu", "windows", "mac")
	// to the setup declared for that platform.
	Platforms map[string]Platform `yaml:"platforms,omitempty"`
}

// Application declares a single application dependency.
type Application struct {
	Pkg     string `yaml:"pkg,omitempty"`
	Version string `yaml:"version,omitempty"`
	Env     string `yaml:"env,omitempty"`

	// InstallPriority orders package managers by preference for this
	// application.
	InstallPriority []string `yaml:"install_priority,omitempty"`

	SkipInstall  bool `yaml:"skip_install,omitempty"`
	FailSilently bool `yaml:"fail_silently,omitempty"`
}

// Platform declares the setup for one platform entry.
type Platform struct {
	// Versions lists the platform versions this entry applies to.
	Versions []string `yaml:"versions" validate:"required,min=1"`

	// Arch restricts the entry to a CPU architecture (e.g. "x86_64").
	Arch string `yaml:"arch,omitempty"`

	// Source optionally declares a source download for this platform.
	Source *Source `yaml:"source,omitempty"`

	// System maps package-manager names to their command arguments.
	System System `yaml:"system,omitempty"`

	// PreInstall lists shell lines to run before installation.
	PreInstall []string `yaml:"pre_install,omitempty"`

	// InstallPriority orders package managers by preference.
	InstallPriority []string `yaml:"install_priority,omitempty"`

	SkipInstall  bool `yaml:"skip_install,omitempty"`
	FailSilently bool `yaml:"fail_silently,omitempty"`
}

// System maps a package-manager name (apt, brew, choco, pacman, ...) to
// the argument list passed to it.
type System map[string][]string

// Source declares where platform sources come from. Download and
// DownloadDirectory must either both be present or both be absent; the
// invariant is enforced by Validator, not during resolution.
type Source struct {
	DownloadDirectory *string   `yaml:"download_directory,omitempty"`
	Download          *Download `yaml:"download,omitempty"`

	System System `yaml:"system,omitempty"`
}

// Download declares a single source download.
type Download struct {
	// URI is the absolute download location.
	URI URI `yaml:"uri"`

	// SHA512 is the expected hash of the downloaded artifact.
	SHA512 string `yaml:"sha512" validate:"required"`

	Extract   bool `yaml:"extract,omitempty"`
	Shareable bool `yaml:"shareable,omitempty"`
}

// Exposes declares the network surface of the project.
type Exposes struct {
	Ports *Ports `yaml:"ports,omitempty"`
}

// Ports lists exposed TCP and UDP port numbers.
type Ports struct {
	TCP []uint16 `yaml:"tcp,omitempty"`
	UDP []uint16 `yaml:"udp,omitempty"`
}

// URI is an absolute URL parsed at decode time.
type URI struct {
	*url.URL
}

// UnmarshalYAML parses the scalar as an absolute URL.
func (u *URI) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid uri %q: %w", s, err)
	}
	if !parsed.IsAbs() {
		return fmt.Errorf("uri %q is not absolute", s)
	}
	u.URL = parsed
	return nil
}

// MarshalYAML renders the URL back to its string form.
func (u URI) MarshalYAML() (interface{}, error) {
	if u.URL == nil {
		return "", nil
	}
	return u.URL.String(), nil
}
