package build

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fastogt/fastobuild/pkgs/version"
)

// recipeFile is the on-disk form of user recipes:
//
//	[[recipe]]
//	name = "zlib"
//	source = "tarball"
//	url = "https://zlib.net/zlib-{version}.tar.gz"
//	strategy = "configure"
//	flags = ["--static"]
type recipeFile struct {
	Recipe []recipeEntry `toml:"recipe"`
}

type recipeEntry struct {
	Name             string   `toml:"name"`
	Source           string   `toml:"source"`
	URL              string   `toml:"url"`
	Strategy         string   `toml:"strategy"`
	Flags            []string `toml:"flags"`
	UsePlatformFlags *bool    `toml:"use_platform_flags"`
	BuildSystem      string   `toml:"build_system"`
	Branch           string   `toml:"branch"`
	Executable       string   `toml:"executable"`
	VersionScheme    string   `toml:"version_scheme"`
	MinVersion       string   `toml:"min_version"`
}

func (e recipeEntry) recipe() (Recipe, error) {
	r := Recipe{
		Name:             e.Name,
		Source:           SourceKind(e.Source),
		URL:              e.URL,
		Strategy:         Strategy(e.Strategy),
		Flags:            e.Flags,
		UsePlatformFlags: e.UsePlatformFlags == nil || *e.UsePlatformFlags,
		BuildSystem:      e.BuildSystem,
		Branch:           e.Branch,
		Executable:       e.Executable,
		MinVersion:       e.MinVersion,
	}
	if r.Source == "" {
		r.Source = Git
	}
	switch e.VersionScheme {
	case "", "semver":
		r.VersionScheme = version.Semver
	case "gnu":
		r.VersionScheme = version.GNU
	default:
		return Recipe{}, fmt.Errorf("recipe %s: unknown version scheme %q", e.Name, e.VersionScheme)
	}
	return r, nil
}

// LoadRecipes reads a TOML file of [[recipe]] tables.
func LoadRecipes(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRecipes(string(data))
}

// ParseRecipes parses the contents of a recipe file. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func ParseRecipes(data string) (*Table, error) {
	var f recipeFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse recipes: unknown keys %s", strings.Join(keys, ", "))
	}
	recipes := make([]Recipe, 0, len(f.Recipe))
	for _, e := range f.Recipe {
		r, err := e.recipe()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return NewTable(recipes...)
}
