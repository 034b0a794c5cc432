//go:build !windows

package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// osReleasePath is a variable so tests can point the provider at a
// fixture file.
var osReleasePath = "/etc/os-release"

// hostProvider collects facts from the local Unix-like host.
type hostProvider struct{}

func (hostProvider) Collect() (Facts, error) {
	if runtime.GOOS == "darwin" {
		return Facts{Family: "darwin", Version: macOSVersion()}, nil
	}

	f, err := os.Open(osReleasePath)
	if err != nil {
		// No os-release means an unclassifiable distribution, not a
		// failed resolution.
		return Facts{}, nil
	}
	defer f.Close()

	id, idLike, versionID := parseOSRelease(f)
	return Facts{Family: id, FamilyLike: idLike, Version: versionID}, nil
}

// macOSVersion asks sw_vers for the product version.
func macOSVersion() string {
	out, err := exec.Command("sw_vers", "-productVersion").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
