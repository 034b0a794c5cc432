// Package platform resolves the identity of the host machine: OS family,
// human-readable version aliases, and CPU architecture. The identity is
// computed once at process start and used to select the matching platform
// entry of a project manifest.
//
// Raw host facts come from a Provider so the classification logic stays
// host-independent; the default provider is backed by native OS calls
// (RtlGetVersion on Windows, /etc/os-release elsewhere) and tests inject
// fakes.
package platform

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Name is the enumerated OS family of a host.
type Name string

const (
	NameArch    Name = "Arch"
	NameCentOS  Name = "CentOS"
	NameDebian  Name = "Debian"
	NameMacOSX  Name = "MacOSX"
	NameManjaro Name = "Manjaro"
	NameRedhat  Name = "Redhat"
	NameUbuntu  Name = "Ubuntu"
	NameWindows Name = "Windows"
	NameUnknown Name = "Unknown"
)

// ManifestKey returns the dependencies.platforms key this family matches.
// MacOSX entries are keyed "mac"; every other family matches its
// lower-cased name.
func (n Name) ManifestKey() string {
	if n == NameMacOSX {
		return "mac"
	}
	return strings.ToLower(string(n))
}

// Architecture is the CPU architecture of the build target. It is a
// static property of the compiled binary and does not change during a
// run.
type Architecture string

const (
	ArchX86_32  Architecture = "x86_32"
	ArchX86_64  Architecture = "x86_64"
	ArchUnknown Architecture = "Unknown"
)

// Identity describes the resolved host platform.
type Identity struct {
	// Name is the OS family.
	Name Name `json:"name"`

	// Versions are human-readable aliases for the host version, most
	// specific first. On Windows this is product name, build number and,
	// when known, the feature-update release label; elsewhere it is the
	// single raw version string.
	Versions []string `json:"versions"`

	// Architecture is the CPU architecture of the build target.
	Architecture Architecture `json:"architecture"`
}

// Facts are the raw host facts an Identity is derived from.
type Facts struct {
	// Family is the distribution or OS family identifier (os-release ID
	// on Linux, "darwin" on macOS). Ignored when Windows is set.
	Family string

	// FamilyLike lists related families (os-release ID_LIKE).
	FamilyLike []string

	// Version is the raw OS version string.
	Version string

	// Windows carries the version tuple reported by the Windows kernel;
	// nil on other hosts.
	Windows *WindowsVersion
}

// WindowsVersion is the version information reported by RtlGetVersion,
// plus the system metrics needed to disambiguate legacy 5.2 builds.
type WindowsVersion struct {
	Major       uint32
	Minor       uint32
	Build       uint32
	ProductType byte
	SuiteMask   uint16

	// ProcessorArchitecture is the PROCESSOR_ARCHITECTURE_* value from
	// GetSystemInfo.
	ProcessorArchitecture uint16

	// ServerR2 reports GetSystemMetrics(SM_SERVERR2) != 0.
	ServerR2 bool

	// ReleaseID is the ReleaseId registry value, used as the release
	// label when the build table has no match.
	ReleaseID string
}

// Provider supplies raw host facts for identity resolution.
type Provider interface {
	Collect() (Facts, error)
}

// UnknownPlatformError reports a Windows version tuple outside the known
// product table. No install plan can be derived for an unknown OS.
type UnknownPlatformError struct {
	Major       uint32
	Minor       uint32
	Build       uint32
	ProductType byte
}

func (e *UnknownPlatformError) Error() string {
	return fmt.Sprintf("unknown Windows version: %d.%d.%d (product type %d)",
		e.Major, e.Minor, e.Build, e.ProductType)
}

// Current resolves the identity of the running host using the native
// provider.
func Current() (Identity, error) {
	return Resolve(hostProvider{})
}

// Resolve derives an Identity from the facts reported by p.
func Resolve(p Provider) (Identity, error) {
	facts, err := p.Collect()
	if err != nil {
		return Identity{}, err
	}

	id := Identity{Architecture: buildArchitecture()}

	if facts.Windows != nil {
		return resolveWindows(id, *facts.Windows)
	}

	id.Name = classifyFamily(facts.Family, facts.FamilyLike)
	id.Versions = []string{facts.Version}
	return id, nil
}

// resolveWindows maps the kernel version tuple to a product name and
// version alias list. An unrecognized tuple is an UnknownPlatformError.
func resolveWindows(id Identity, v WindowsVersion) (Identity, error) {
	product, ok := windowsProductName(v)
	if !ok {
		return Identity{}, &UnknownPlatformError{
			Major:       v.Major,
			Minor:       v.Minor,
			Build:       v.Build,
			ProductType: v.ProductType,
		}
	}

	id.Name = NameWindows
	id.Versions = []string{product, strconv.FormatUint(uint64(v.Build), 10)}
	if label, ok := ReleaseLabel(v.Build); ok {
		id.Versions = append(id.Versions, label)
	} else if v.ReleaseID != "" {
		id.Versions = append(id.Versions, v.ReleaseID)
	}
	return id, nil
}

// classifyFamily maps a distribution identifier to a platform Name.
func classifyFamily(family string, like []string) Name {
	if n, ok := familyName(family); ok {
		return n
	}
	for _, l := range like {
		if n, ok := familyName(l); ok {
			return n
		}
	}
	return NameUnknown
}

func familyName(family string) (Name, bool) {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "arch", "archlinux":
		return NameArch, true
	case "centos":
		return NameCentOS, true
	case "debian":
		return NameDebian, true
	case "darwin", "macos", "osx":
		return NameMacOSX, true
	case "manjaro":
		return NameManjaro, true
	case "rhel", "redhat":
		return NameRedhat, true
	case "ubuntu":
		return NameUbuntu, true
	default:
		return NameUnknown, false
	}
}

// buildArchitecture maps the compile-time target to an Architecture.
func buildArchitecture() Architecture {
	switch runtime.GOARCH {
	case "386":
		return ArchX86_32
	case "amd64":
		return ArchX86_64
	default:
		return ArchUnknown
	}
}
