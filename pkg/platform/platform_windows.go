//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// SM_SERVERR2: build number of Windows Server 2003 R2, zero otherwise.
const smServerR2 = 89

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procGetSystemInfo    = kernel32.NewProc("GetNativeSystemInfo")
)

// systemInfo mirrors the Win32 SYSTEM_INFO layout.
type systemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// hostProvider collects facts from the Windows kernel. RtlGetVersion is
// used instead of GetVersionEx because it is not subject to manifest
// compatibility shims and reports the true OS version.
type hostProvider struct{}

func (hostProvider) Collect() (Facts, error) {
	info := windows.RtlGetVersion()

	r2, _, _ := procGetSystemMetrics.Call(uintptr(smServerR2))

	var si systemInfo
	_, _, _ = procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))

	return Facts{Windows: &WindowsVersion{
		Major:                 info.MajorVersion,
		Minor:                 info.MinorVersion,
		Build:                 info.BuildNumber,
		ProductType:           info.ProductType,
		SuiteMask:             info.SuiteMask,
		ProcessorArchitecture: si.ProcessorArchitecture,
		ServerR2:              r2 != 0,
		ReleaseID:             registryReleaseID(),
	}}, nil
}

// registryReleaseID reads the ReleaseId value Windows publishes under
// CurrentVersion. Empty when the key or value is missing.
func registryReleaseID() string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE,
		`SOFTWARE\Microsoft\Windows\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer k.Close()

	id, _, err := k.GetStringValue("ReleaseId")
	if err != nil {
		return ""
	}
	return id
}
