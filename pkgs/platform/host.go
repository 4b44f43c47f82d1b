package platform

import "strings"

// HostOS returns the OS family name of the running host, or "unknown".
func HostOS() string {
	return osFromSysname(sysname())
}

// HostArch returns the machine hardware name of the running host.
func HostArch() string {
	return machine()
}

func osFromSysname(s string) string {
	switch {
	case strings.Contains(s, "MINGW"), strings.Contains(s, "MSYS"), s == "Windows":
		return Windows
	case s == "Linux":
		return Linux
	case s == "Darwin":
		return MacOSX
	case s == "FreeBSD":
		return FreeBSD
	case s == "Android":
		return Android
	}
	return "unknown"
}

// StablePath normalizes path separators to forward slashes.
func StablePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
