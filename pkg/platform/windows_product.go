package platform

// Win32 constants used by the product table.
// https://learn.microsoft.com/windows/win32/api/winnt/ns-winnt-osversioninfoexw
const (
	verNTWorkstation = 0x01
	verSuiteWHServer = 0x8000

	processorArchitectureAMD64 = 9
)

// windowsProductName derives the marketing product name from a kernel
// version tuple. It covers Windows 2000 through Windows 10 and the
// matching server releases; the legacy 5.2 family needs the suite mask,
// processor architecture and the Server R2 metric to tell Home Server,
// Server 2003 (R2) and XP Professional x64 apart.
func windowsProductName(v WindowsVersion) (string, bool) {
	workstation := v.ProductType == verNTWorkstation

	switch {
	case v.Major == 10 && v.Minor == 0:
		if workstation {
			return "Windows 10", true
		}
		return "Windows Server 2016", true

	case v.Major == 6 && v.Minor == 0:
		if workstation {
			return "Windows Vista", true
		}
		return "Windows Server 2008", true
	case v.Major == 6 && v.Minor == 1:
		if workstation {
			return "Windows 7", true
		}
		return "Windows Server 2008 R2", true
	case v.Major == 6 && v.Minor == 2:
		if workstation {
			return "Windows 8", true
		}
		return "Windows Server 2012", true
	case v.Major == 6 && v.Minor == 3:
		if workstation {
			return "Windows 8.1", true
		}
		return "Windows Server 2012 R2", true

	case v.Major == 5 && v.Minor == 0:
		return "Windows 2000", true
	case v.Major == 5 && v.Minor == 1:
		return "Windows XP", true
	case v.Major == 5 && v.Minor == 2:
		if v.ServerR2 {
			return "Windows Server 2003 R2", true
		}
		if v.SuiteMask&verSuiteWHServer == verSuiteWHServer {
			return "Windows Home Server", true
		}
		if workstation && v.ProcessorArchitecture == processorArchitectureAMD64 {
			return "Windows XP Professional x64 Edition", true
		}
		return "Windows Server 2003", true
	}

	return "", false
}
