package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// DefaultNDKRoot is where Android Studio installs the NDK bundle.
	DefaultNDKRoot = "~/Android/Sdk/ndk-bundle"
	// DefaultAndroidAPI is the minimal Android API level targeted.
	DefaultAndroidAPI = 16
)

// NDK locates an Android NDK and the API level to build against.
type NDK struct {
	Root     string
	APILevel int
}

// DefaultNDK returns the NDK settings used when none are configured.
func DefaultNDK() NDK {
	return NDK{Root: DefaultNDKRoot, APILevel: DefaultAndroidAPI}
}

func (n NDK) withDefaults() NDK {
	if n.Root == "" {
		n.Root = DefaultNDKRoot
	}
	if n.APILevel == 0 {
		n.APILevel = DefaultAndroidAPI
	}
	return n
}

// AbsRoot returns Root with a leading "~" expanded.
func (n NDK) AbsRoot() string {
	return ExpandUser(n.withDefaults().Root)
}

// PlatformName returns the NDK platform name, e.g. "android-16".
func (n NDK) PlatformName() string {
	return fmt.Sprintf("android-%d", n.withDefaults().APILevel)
}

// ToolchainFile returns the NDK cmake toolchain file.
func (n NDK) ToolchainFile() string {
	return n.AbsRoot() + "/build/cmake/android.toolchain.cmake"
}

// sysrootPrefix is the per-ABI usr directory of the legacy NDK layout. It
// keeps "~" unexpanded, like every other default prefix.
func (n NDK) sysrootPrefix(abi string) string {
	n = n.withDefaults()
	return n.Root + "/platforms/" + n.PlatformName() + "/arch-" + abi + "/usr/"
}

func (n NDK) compiler(arch Architecture, tool string) string {
	n = n.withDefaults()
	return fmt.Sprintf("%s/toolchains/llvm/prebuilt/%s/bin/%s-linux-androideabi%d-%s",
		n.AbsRoot(), hostTag(), arch.Name(), n.APILevel, tool)
}

func hostTag() string {
	switch runtime.GOOS {
	case "darwin":
		return "darwin-x86_64"
	case "windows":
		return "windows-x86_64"
	}
	return "linux-x86_64"
}

// ExpandUser replaces a leading "~" with the current user's home directory.
func ExpandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
