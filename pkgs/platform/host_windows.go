package platform

import "runtime"

func sysname() string { return "Windows" }

// machine mirrors the PROCESSOR_ARCHITECTURE spelling Windows reports.
func machine() string {
	switch runtime.GOARCH {
	case "amd64":
		return "AMD64"
	case "386":
		return "x86"
	case "arm64":
		return "ARM64"
	}
	return runtime.GOARCH
}
