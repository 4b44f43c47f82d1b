package platform

import (
	"fmt"
	"slices"
)

// SupportedPlatforms groups the architectures valid for one OS family and
// makes Platform values for them.
type SupportedPlatforms struct {
	name          string
	architectures []Architecture
	packageTypes  []PackageType
	make          func(arch Architecture, types []PackageType, o *options) (Platform, error)
}

// Option configures platform resolution.
type Option func(*options)

type options struct {
	probe DistroProbe
	ndk   NDK
}

// WithDistroProbe overrides how the running Linux distribution is detected.
func WithDistroProbe(probe DistroProbe) Option {
	return func(o *options) {
		o.probe = probe
	}
}

// WithNDK sets the Android NDK location and API level.
func WithNDK(ndk NDK) Option {
	return func(o *options) {
		o.ndk = ndk.withDefaults()
	}
}

func newOptions(opts []Option) *options {
	o := &options{probe: OSRelease, ndk: DefaultNDK()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (s *SupportedPlatforms) Name() string { return s.name }

func (s *SupportedPlatforms) Architectures() []Architecture {
	return slices.Clone(s.architectures)
}

func (s *SupportedPlatforms) PackageTypes() []PackageType {
	return slices.Clone(s.packageTypes)
}

// GetArchitectureByArchName looks an architecture up by its exact name.
func (s *SupportedPlatforms) GetArchitectureByArchName(name string) (Architecture, bool) {
	for _, a := range s.architectures {
		if a.name == name {
			return a, true
		}
	}
	return Architecture{}, false
}

// MakePlatformByArch returns the Platform for arch. For Linux the running
// distribution decides the variant.
func (s *SupportedPlatforms) MakePlatformByArch(arch Architecture, packageTypes []PackageType, opts ...Option) (Platform, error) {
	return s.make(arch, slices.Clone(packageTypes), newOptions(opts))
}

func fixed(kind Kind, name string) func(Architecture, []PackageType, *options) (Platform, error) {
	return func(arch Architecture, types []PackageType, o *options) (Platform, error) {
		p := Platform{kind: kind, name: name, arch: arch, packageTypes: types}
		if kind == AndroidCommon {
			p.ndk = o.ndk
		}
		return p, nil
	}
}

func makeLinux(arch Architecture, types []PackageType, o *options) (Platform, error) {
	family, err := o.probe()
	if err != nil {
		return Platform{}, err
	}
	var kind Kind
	switch family {
	case FamilyDebian:
		kind = Debian
	case FamilyRHEL:
		kind = RedHat
	case FamilyArch:
		kind = Arch
	default:
		return Platform{}, fmt.Errorf("%w: %q", ErrUnknownDistribution, family)
	}
	return Platform{kind: kind, name: Linux, arch: arch, packageTypes: types}, nil
}

var linuxPlatforms = &SupportedPlatforms{
	name: Linux,
	architectures: []Architecture{
		NewArchitecture("x86_64", 64, "/usr/local"),
		NewArchitecture("i386", 32, "/usr/local"),
		NewArchitecture("i686", 32, "/usr/local"),
		NewArchitecture("aarch64", 64, "/usr/local"),
		NewArchitecture("armv7l", 32, "/usr/local"),
		NewArchitecture("armv6l", 32, "/usr/local"),
	},
	packageTypes: []PackageType{DEB, RPM, TGZ},
	make:         makeLinux,
}

var windowsPlatforms = &SupportedPlatforms{
	name: Windows,
	architectures: []Architecture{
		NewArchitecture("x86_64", 64, "/mingw64"),
		NewArchitecture("AMD64", 64, "/mingw64"),
		NewArchitecture("i386", 32, "/mingw32"),
		NewArchitecture("i686", 32, "/mingw32"),
	},
	packageTypes: []PackageType{NSIS, ZIP},
	make:         fixed(WindowsMingw, Windows),
}

var macosxPlatforms = &SupportedPlatforms{
	name:          MacOSX,
	architectures: []Architecture{NewArchitecture("x86_64", 64, "/usr/local")},
	packageTypes:  []PackageType{DragNDrop, ZIP},
	make:          fixed(MacOSXCommon, MacOSX),
}

var freebsdPlatforms = &SupportedPlatforms{
	name: FreeBSD,
	architectures: []Architecture{
		NewArchitecture("x86_64", 64, "/usr/local"),
		NewArchitecture("amd64", 64, "/usr/local"),
	},
	packageTypes: []PackageType{TGZ},
	make:         fixed(FreeBSDCommon, FreeBSD),
}

// AndroidPlatforms returns the Android family for the given NDK. Default
// install prefixes live inside the NDK sysroot.
func AndroidPlatforms(ndk NDK) *SupportedPlatforms {
	ndk = ndk.withDefaults()
	return &SupportedPlatforms{
		name: Android,
		architectures: []Architecture{
			NewArchitecture("armv7a", 32, ndk.sysrootPrefix("arm")),
			NewArchitecture("i686", 32, ndk.sysrootPrefix("x86")),
			NewArchitecture("x86_64", 64, ndk.sysrootPrefix("x86")),
			NewArchitecture("aarch64", 64, ndk.sysrootPrefix("x86")),
		},
		packageTypes: []PackageType{APK},
		make:         fixed(AndroidCommon, Android),
	}
}

var supportedPlatforms = []*SupportedPlatforms{
	linuxPlatforms,
	windowsPlatforms,
	macosxPlatforms,
	freebsdPlatforms,
	AndroidPlatforms(DefaultNDK()),
}

// SupportedPlatformsList returns every registered OS family in registry order.
func SupportedPlatformsList() []*SupportedPlatforms {
	return slices.Clone(supportedPlatforms)
}

// GetSupportedPlatformByName returns the OS family registered under name.
// WithNDK is honoured for the Android family.
func GetSupportedPlatformByName(name string, opts ...Option) (*SupportedPlatforms, bool) {
	for _, s := range supportedPlatforms {
		if s.name != name {
			continue
		}
		if name == Android && len(opts) > 0 {
			return AndroidPlatforms(newOptions(opts).ndk), true
		}
		return s, true
	}
	return nil, false
}
