package platform

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func fixedProbe(f Family) DistroProbe {
	return func() (Family, error) { return f, nil }
}

func TestMakePlatformByArchEveryRegistered(t *testing.T) {
	for _, sp := range SupportedPlatformsList() {
		for _, arch := range sp.Architectures() {
			t.Run(sp.Name()+"/"+arch.Name(), func(t *testing.T) {
				got, ok := GetSupportedPlatformByName(sp.Name())
				if !ok {
					t.Fatalf("GetSupportedPlatformByName(%q) not found", sp.Name())
				}
				a, ok := got.GetArchitectureByArchName(arch.Name())
				if !ok {
					t.Fatalf("GetArchitectureByArchName(%q) not found", arch.Name())
				}
				p, err := got.MakePlatformByArch(a, got.PackageTypes(), WithDistroProbe(fixedProbe(FamilyDebian)))
				if err != nil {
					t.Fatalf("MakePlatformByArch: %v", err)
				}
				if p.Name() != sp.Name() {
					t.Errorf("Name() = %q, want %q", p.Name(), sp.Name())
				}
				if p.Architecture().Name() != arch.Name() {
					t.Errorf("Architecture().Name() = %q, want %q", p.Architecture().Name(), arch.Name())
				}
			})
		}
	}
}

func TestUnknownNames(t *testing.T) {
	if _, ok := GetSupportedPlatformByName("plan9"); ok {
		t.Error("plan9 should not be registered")
	}
	sp, _ := GetSupportedPlatformByName(Linux)
	if _, ok := sp.GetArchitectureByArchName("sparc"); ok {
		t.Error("sparc should not be a linux architecture")
	}
	// names are case sensitive: AMD64 only exists for windows
	if _, ok := sp.GetArchitectureByArchName("AMD64"); ok {
		t.Error("AMD64 should not be a linux architecture")
	}
}

func TestLinuxDistributionDispatch(t *testing.T) {
	sp, _ := GetSupportedPlatformByName(Linux)
	arch, _ := sp.GetArchitectureByArchName("x86_64")

	tests := []struct {
		family Family
		kind   Kind
		want   []string
	}{
		{FamilyDebian, Debian, []string{"apt-get", "-y", "--no-install-recommends", "install", "foo"}},
		{FamilyRHEL, RedHat, []string{"yum", "-y", "install", "foo"}},
		{FamilyArch, Arch, []string{"pacman", "-S", "--noconfirm", "foo"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			p, err := sp.MakePlatformByArch(arch, sp.PackageTypes(), WithDistroProbe(fixedProbe(tt.family)))
			if err != nil {
				t.Fatal(err)
			}
			if p.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", p.Kind(), tt.kind)
			}
			got, err := p.InstallCommand("foo")
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("InstallCommand = %q, want %q", got, tt.want)
			}
		})
	}

	_, err := sp.MakePlatformByArch(arch, nil, WithDistroProbe(fixedProbe("gentoo")))
	if !errors.Is(err, ErrUnknownDistribution) {
		t.Errorf("err = %v, want ErrUnknownDistribution", err)
	}
}

func TestInstallCommandPerFamily(t *testing.T) {
	tests := []struct {
		name string
		arch string
		want []string
	}{
		{Windows, "x86_64", []string{"pacman", "-S", "--noconfirm", "zlib"}},
		{MacOSX, "x86_64", []string{"port", "-N", "install", "zlib"}},
		{FreeBSD, "amd64", []string{"pkg", "install", "-y", "zlib"}},
	}
	for _, tt := range tests {
		sp, _ := GetSupportedPlatformByName(tt.name)
		arch, _ := sp.GetArchitectureByArchName(tt.arch)
		p, err := sp.MakePlatformByArch(arch, sp.PackageTypes())
		if err != nil {
			t.Fatal(err)
		}
		got, err := p.InstallCommand("zlib")
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("%s: InstallCommand = %q, want %q", tt.name, got, tt.want)
		}
		if len(p.EnvVariables()) != 0 || p.CMakeSpecificFlags() != nil || p.ConfigureSpecificFlags() != nil {
			t.Errorf("%s: unexpected cross-compilation settings", tt.name)
		}
	}
}

func TestAndroidPlatform(t *testing.T) {
	root := t.TempDir()
	ndk := NDK{Root: root, APILevel: 21}
	sp, ok := GetSupportedPlatformByName(Android, WithNDK(ndk))
	if !ok {
		t.Fatal("android not registered")
	}
	arch, ok := sp.GetArchitectureByArchName("armv7a")
	if !ok {
		t.Fatal("armv7a not found")
	}
	if want := root + "/platforms/android-21/arch-arm/usr/"; arch.DefaultInstallPrefix() != want {
		t.Errorf("DefaultInstallPrefix = %q, want %q", arch.DefaultInstallPrefix(), want)
	}
	p, err := sp.MakePlatformByArch(arch, sp.PackageTypes(), WithNDK(ndk))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.InstallCommand("foo"); !errors.Is(err, ErrNotSupported) {
		t.Errorf("InstallCommand err = %v, want ErrNotSupported", err)
	}

	flags := p.CMakeSpecificFlags()
	toolchain := "-DCMAKE_TOOLCHAIN_FILE=" + filepath.Clean(root) + "/build/cmake/android.toolchain.cmake"
	if !slices.Contains(flags, toolchain) {
		t.Errorf("CMakeSpecificFlags = %q, missing %q", flags, toolchain)
	}
	if !slices.Contains(flags, "-DANDROID_PLATFORM=android-21") {
		t.Errorf("CMakeSpecificFlags = %q, missing ANDROID_PLATFORM", flags)
	}

	if got := p.ConfigureSpecificFlags(); !slices.Equal(got, []string{"--host=armv7a-linux-androideabi"}) {
		t.Errorf("ConfigureSpecificFlags = %q", got)
	}

	env := p.EnvVariables()
	if !strings.HasSuffix(env["CC"], "/bin/armv7a-linux-androideabi21-clang") {
		t.Errorf("CC = %q", env["CC"])
	}
	if !strings.HasSuffix(env["CXX"], "/bin/armv7a-linux-androideabi21-clang++") {
		t.Errorf("CXX = %q", env["CXX"])
	}
	if !strings.HasPrefix(env["CC"], filepath.Clean(root)+"/toolchains/llvm/prebuilt/") {
		t.Errorf("CC = %q, want under NDK root", env["CC"])
	}
	if got := p.EnvKeys(); !slices.Equal(got, []string{"CC", "CXX"}) {
		t.Errorf("EnvKeys = %q", got)
	}
}

func TestAndroidDefaultNDKExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	sp, _ := GetSupportedPlatformByName(Android)
	arch, _ := sp.GetArchitectureByArchName("aarch64")
	p, err := sp.MakePlatformByArch(arch, sp.PackageTypes())
	if err != nil {
		t.Fatal(err)
	}
	want := "-DCMAKE_TOOLCHAIN_FILE=" + filepath.Join(home, "Android/Sdk/ndk-bundle") + "/build/cmake/android.toolchain.cmake"
	if got := p.CMakeSpecificFlags()[0]; got != want {
		t.Errorf("toolchain flag = %q, want %q", got, want)
	}
	if !strings.HasPrefix(arch.DefaultInstallPrefix(), "~/Android/Sdk/ndk-bundle/platforms/android-16/") {
		t.Errorf("DefaultInstallPrefix = %q", arch.DefaultInstallPrefix())
	}
}

func TestPackageTypeExtension(t *testing.T) {
	for typ, want := range map[PackageType]string{
		DEB: "deb", RPM: "rpm", TGZ: "tar.gz", NSIS: "exe",
		ZIP: "zip", DragNDrop: "dmg", APK: "apk", "MSI": "unknown",
	} {
		if got := typ.Extension(); got != want {
			t.Errorf("%s.Extension() = %q, want %q", typ, got, want)
		}
	}
}

func TestPackageTypesAreCopies(t *testing.T) {
	sp, _ := GetSupportedPlatformByName(Linux)
	types := sp.PackageTypes()
	types[0] = APK
	if sp.PackageTypes()[0] != DEB {
		t.Error("PackageTypes exposes the registry slice")
	}
}

func TestExpandUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for in, want := range map[string]string{
		"~":          home,
		"~/opt":      filepath.Join(home, "opt"),
		"/usr/local": "/usr/local",
		"~other/x":   "~other/x",
	} {
		if got := ExpandUser(in); got != want {
			t.Errorf("ExpandUser(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOSFromSysname(t *testing.T) {
	for in, want := range map[string]string{
		"MINGW64_NT-10.0": Windows,
		"MSYS_NT-10.0":    Windows,
		"Windows":         Windows,
		"Linux":           Linux,
		"Darwin":          MacOSX,
		"FreeBSD":         FreeBSD,
		"SunOS":           "unknown",
	} {
		if got := osFromSysname(in); got != want {
			t.Errorf("osFromSysname(%q) = %q, want %q", in, got, want)
		}
	}
	if StablePath(`C:\msys64\mingw64`) != "C:/msys64/mingw64" {
		t.Error("StablePath did not normalize separators")
	}
	if _, err := os.Stat("/"); err == nil && HostArch() == "" {
		t.Error("HostArch() returned empty string")
	}
}
