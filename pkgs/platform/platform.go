// Package platform describes the operating system families and CPU
// architectures fastobuild can target, together with the per-platform
// capabilities (package installation, cross-compilation environment and
// flags) the build orchestrator relies on.
package platform

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	ErrUnknownPlatform     = errors.New("unknown platform")
	ErrUnknownArch         = errors.New("unknown architecture")
	ErrUnknownDistribution = errors.New("unknown distribution")
	ErrNotSupported        = errors.New("not supported on this platform")
)

// OS family names.
const (
	Linux   = "linux"
	Windows = "windows"
	MacOSX  = "macosx"
	FreeBSD = "freebsd"
	Android = "android"
)

// Architecture is a CPU/ABI target with its default install location.
type Architecture struct {
	name          string
	bit           int
	defaultPrefix string
}

// NewArchitecture returns an Architecture.
func NewArchitecture(name string, bit int, defaultPrefix string) Architecture {
	return Architecture{name: name, bit: bit, defaultPrefix: defaultPrefix}
}

func (a Architecture) Name() string { return a.name }

func (a Architecture) Bit() int { return a.bit }

// DefaultInstallPrefix is the prefix used when the caller leaves it empty.
// It may start with "~".
func (a Architecture) DefaultInstallPrefix() string { return a.defaultPrefix }

// Kind identifies a concrete platform variant.
type Kind int

const (
	Debian Kind = iota
	RedHat
	Arch
	WindowsMingw
	MacOSXCommon
	FreeBSDCommon
	AndroidCommon
)

var kindNames = map[Kind]string{
	Debian:        "debian",
	RedHat:        "redhat",
	Arch:          "arch",
	WindowsMingw:  "windows-mingw",
	MacOSXCommon:  "macosx",
	FreeBSDCommon: "freebsd",
	AndroidCommon: "android",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Platform is an OS family bound to one architecture. The set of variants is
// closed; capabilities dispatch on Kind.
type Platform struct {
	kind         Kind
	name         string
	arch         Architecture
	packageTypes []PackageType
	ndk          NDK
}

func (p Platform) Kind() Kind { return p.kind }

// Name returns the OS family name, e.g. "linux".
func (p Platform) Name() string { return p.name }

func (p Platform) Architecture() Architecture { return p.arch }

func (p Platform) PackageTypes() []PackageType { return slices.Clone(p.packageTypes) }

// NDK returns the Android NDK settings; zero for other platforms.
func (p Platform) NDK() NDK { return p.ndk }

// InstallCommand returns the non-interactive package manager command line
// that installs the named OS package.
func (p Platform) InstallCommand(name string) ([]string, error) {
	switch p.kind {
	case Debian:
		return []string{"apt-get", "-y", "--no-install-recommends", "install", name}, nil
	case RedHat:
		return []string{"yum", "-y", "install", name}, nil
	case Arch, WindowsMingw:
		return []string{"pacman", "-S", "--noconfirm", name}, nil
	case MacOSXCommon:
		return []string{"port", "-N", "install", name}, nil
	case FreeBSDCommon:
		return []string{"pkg", "install", "-y", name}, nil
	case AndroidCommon:
		return nil, fmt.Errorf("install package %s: %w", name, ErrNotSupported)
	}
	return nil, fmt.Errorf("install package %s on %s: %w", name, p.kind, ErrNotSupported)
}

// EnvVariables returns variables that must be present in the environment of
// every build step.
func (p Platform) EnvVariables() map[string]string {
	if p.kind != AndroidCommon {
		return map[string]string{}
	}
	return map[string]string{
		"CC":  p.ndk.compiler(p.arch, "clang"),
		"CXX": p.ndk.compiler(p.arch, "clang++"),
	}
}

// CMakeSpecificFlags returns the extra flags passed to every cmake configure.
func (p Platform) CMakeSpecificFlags() []string {
	if p.kind != AndroidCommon {
		return nil
	}
	return []string{
		"-DCMAKE_TOOLCHAIN_FILE=" + p.ndk.ToolchainFile(),
		"-DANDROID_PLATFORM=" + p.ndk.PlatformName(),
	}
}

// ConfigureSpecificFlags returns the extra flags passed to every configure script.
func (p Platform) ConfigureSpecificFlags() []string {
	if p.kind != AndroidCommon {
		return nil
	}
	return []string{"--host=" + p.arch.Name() + "-linux-androideabi"}
}

// EnvKeys returns the EnvVariables keys in a stable order.
func (p Platform) EnvKeys() []string {
	return slices.Sorted(maps.Keys(p.EnvVariables()))
}
