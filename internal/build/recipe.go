package build

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fastogt/fastobuild/pkgs/buildsys"
	"github.com/fastogt/fastobuild/pkgs/platform"
	"github.com/fastogt/fastobuild/pkgs/version"
)

// DefaultGitOrg is the GitHub organization git recipes are cloned from.
const DefaultGitOrg = "fastogt"

// SourceKind says how a recipe's sources are retrieved.
type SourceKind string

const (
	Git     SourceKind = "git"
	Tarball SourceKind = "tarball"
)

// Strategy names the sequence of steps that builds a retrieved tree.
type Strategy string

const (
	CMake      Strategy = "cmake"
	Configure  Strategy = "configure"
	Autogen    Strategy = "autogen"
	Bootstrap  Strategy = "bootstrap"
	Autoreconf Strategy = "autoreconf"
	Meson      Strategy = "meson"
	Python     Strategy = "python"
)

var strategies = []Strategy{CMake, Configure, Autogen, Bootstrap, Autoreconf, Meson, Python}

func (s Strategy) valid() bool { return slices.Contains(strategies, s) }

// defaultBuildSystem is the build tool a strategy drives unless the recipe
// names another one.
func (s Strategy) defaultBuildSystem() string {
	switch s {
	case CMake, Meson:
		return buildsys.Ninja
	}
	return buildsys.Make
}

// Options are the per-build knobs a caller can set.
type Options struct {
	Version string
	Shared  bool
	WithQt  bool
	// Branch overrides the recipe's branch for git sources.
	Branch string
}

// Recipe describes how to retrieve and build one dependency.
type Recipe struct {
	Name   string
	Source SourceKind
	// URL is a repository name under the git organization, a full git URL,
	// or for tarballs a URL template where {version} is substituted.
	URL              string
	Strategy         Strategy
	Flags            []string
	UsePlatformFlags bool
	BuildSystem      string
	Branch           string
	// Executable is the configure script, relative to the source root.
	Executable    string
	VersionScheme version.Scheme
	MinVersion    string
	// FlagsFunc contributes flags that depend on the target or options.
	FlagsFunc func(p platform.Platform, o Options) []string
}

// Versioned reports whether the recipe needs Options.Version.
func (r Recipe) Versioned() bool {
	return strings.Contains(r.URL, "{version}")
}

// SourceURL resolves the URL to retrieve for version v.
func (r Recipe) SourceURL(org, v string) string {
	if r.Source == Git {
		if strings.Contains(r.URL, "://") {
			return r.URL
		}
		return fmt.Sprintf("https://github.com/%s/%s", org, r.URL)
	}
	return strings.ReplaceAll(r.URL, "{version}", v)
}

// flags returns a fresh slice: the static flags, then FlagsFunc's.
func (r Recipe) flags(p platform.Platform, o Options) []string {
	out := slices.Clone(r.Flags)
	if r.FlagsFunc != nil {
		out = append(out, r.FlagsFunc(p, o)...)
	}
	return out
}

// BuildSystemName is the build tool the recipe drives.
func (r Recipe) BuildSystemName() string {
	if r.BuildSystem != "" {
		return r.BuildSystem
	}
	return r.Strategy.defaultBuildSystem()
}

func (r Recipe) buildSystem() (buildsys.BuildSystem, error) {
	name := r.BuildSystemName()
	b, ok := buildsys.Get(name)
	if !ok {
		return buildsys.BuildSystem{}, fmt.Errorf("%w: %s", ErrUnknownBuildSystem, name)
	}
	return b, nil
}

func (r Recipe) validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe without a name")
	}
	if r.Source != Git && r.Source != Tarball {
		return fmt.Errorf("recipe %s: unknown source %q", r.Name, r.Source)
	}
	if r.URL == "" {
		return fmt.Errorf("recipe %s: empty url", r.Name)
	}
	if !r.Strategy.valid() {
		return fmt.Errorf("recipe %s: %w: %q", r.Name, ErrUnknownStrategy, r.Strategy)
	}
	if _, err := r.buildSystem(); err != nil {
		return fmt.Errorf("recipe %s: %w", r.Name, err)
	}
	return nil
}

// Table is an ordered set of recipes keyed by name.
type Table struct {
	recipes []Recipe
}

// NewTable builds a table; later recipes replace earlier ones with the
// same name.
func NewTable(recipes ...Recipe) (*Table, error) {
	t := &Table{}
	for _, r := range recipes {
		if err := r.validate(); err != nil {
			return nil, err
		}
		t.put(r)
	}
	return t, nil
}

func (t *Table) put(r Recipe) {
	if i := slices.IndexFunc(t.recipes, func(x Recipe) bool { return x.Name == r.Name }); i >= 0 {
		t.recipes[i] = r
		return
	}
	t.recipes = append(t.recipes, r)
}

// Lookup returns the recipe called name.
func (t *Table) Lookup(name string) (Recipe, bool) {
	for _, r := range t.recipes {
		if r.Name == name {
			return r, true
		}
	}
	return Recipe{}, false
}

// Recipes lists the table in order.
func (t *Table) Recipes() []Recipe {
	return slices.Clone(t.recipes)
}

// Merge returns a new table with other's recipes overriding or extending t.
func (t *Table) Merge(other *Table) *Table {
	out := &Table{recipes: slices.Clone(t.recipes)}
	if other != nil {
		for _, r := range other.recipes {
			out.put(r)
		}
	}
	return out
}

func opensslFlags(p platform.Platform, o Options) []string {
	flags := []string{"no-tests"}
	if !o.Shared {
		flags = append(flags, "no-shared")
	}
	if p.Name() == platform.Android {
		flags = append(flags, "no-asm")
	}
	return append(flags, "--libdir=lib")
}

func commonFlags(_ platform.Platform, o Options) []string {
	if o.WithQt {
		return []string{"-DQT_ENABLED=ON"}
	}
	return nil
}

var builtin = []Recipe{
	{Name: "snappy", Source: Git, URL: "snappy", Strategy: CMake, UsePlatformFlags: true,
		Flags: []string{"-DBUILD_SHARED_LIBS=OFF", "-DSNAPPY_BUILD_TESTS=OFF"}},
	{Name: "jsonc", Source: Git, URL: "json-c", Strategy: CMake, UsePlatformFlags: true,
		Flags: []string{"-DBUILD_SHARED_LIBS=OFF"}},
	{Name: "libev", Source: Git, URL: "libev", Strategy: Autogen, UsePlatformFlags: true,
		Flags: []string{"--with-pic", "--disable-shared", "--enable-static"}},
	{Name: "cpuid", Source: Git, URL: "libcpuid", Strategy: Autoreconf, UsePlatformFlags: true,
		Flags: []string{"--disable-shared", "--enable-static"}},
	{Name: "common", Source: Git, URL: "common", Strategy: CMake, UsePlatformFlags: true,
		FlagsFunc: commonFlags},
	{Name: "fastotv_protocol", Source: Git, URL: "fastotv_protocol", Strategy: CMake, UsePlatformFlags: true},
	{Name: "fastoplayer", Source: Git, URL: "fastoplayer", Strategy: CMake, UsePlatformFlags: true},
	{Name: "pyfastogt", Source: Git, URL: "pyfastogt", Strategy: Python},
	{Name: "cmake", Source: Tarball, Strategy: Configure, UsePlatformFlags: true,
		URL:           "https://github.com/Kitware/CMake/releases/download/v{version}/cmake-{version}.tar.gz",
		VersionScheme: version.Semver},
	{Name: "meson", Source: Tarball, Strategy: Python,
		URL:           "https://github.com/mesonbuild/meson/releases/download/{version}/meson-{version}.tar.gz",
		VersionScheme: version.Semver},
	{Name: "openssl", Source: Tarball, Strategy: Configure,
		URL:           "https://www.openssl.org/source/openssl-{version}.tar.gz",
		Executable:    "./config",
		BuildSystem:   buildsys.SingleMake,
		VersionScheme: version.GNU,
		MinVersion:    "1.0.2",
		FlagsFunc:     opensslFlags},
}

// Builtin returns the table of dependencies fastobuild knows out of the box.
func Builtin() *Table {
	t, err := NewTable(builtin...)
	if err != nil {
		panic(err)
	}
	return t
}

// Target is one entry of a BuildAll run.
type Target struct {
	Name    string
	Options Options
}

// ParseTarget parses "NAME" or "NAME@VERSION".
func ParseTarget(s string) (Target, error) {
	name, ver, hasVer := strings.Cut(s, "@")
	if name == "" {
		return Target{}, fmt.Errorf("invalid target %q: empty name", s)
	}
	if hasVer && ver == "" {
		return Target{}, fmt.Errorf("invalid target %q: empty version", s)
	}
	return Target{Name: name, Options: Options{Version: ver}}, nil
}

func (t Target) String() string {
	if t.Options.Version == "" {
		return t.Name
	}
	return t.Name + "@" + t.Options.Version
}
