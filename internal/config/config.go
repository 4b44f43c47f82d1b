// Package config resolves fastobuild settings from, in decreasing order of
// precedence, command-line flags, FASTOBUILD_* environment variables, the
// fastobuild.toml config file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fastogt/fastobuild/internal/env"
	"github.com/fastogt/fastobuild/pkgs/platform"
)

const (
	FileName  = "fastobuild.toml"
	EnvPrefix = "FASTOBUILD"
)

type Android struct {
	NDKRoot  string `mapstructure:"ndk_root"`
	APILevel int    `mapstructure:"api_level"`
}

// NDK converts the settings for the platform catalog.
func (a Android) NDK() platform.NDK {
	return platform.NDK{Root: a.NDKRoot, APILevel: a.APILevel}
}

type Config struct {
	Platform  string  `mapstructure:"platform"`
	Arch      string  `mapstructure:"arch"`
	Prefix    string  `mapstructure:"prefix"`
	BuildDir  string  `mapstructure:"build_dir"`
	GitOrg    string  `mapstructure:"git_org"`
	Recipes   string  `mapstructure:"recipes"`
	KeepGoing bool    `mapstructure:"keep_going"`
	Verbose   bool    `mapstructure:"verbose"`
	Android   Android `mapstructure:"android"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	buildDir, err := env.DefaultBuildDir()
	if err != nil {
		buildDir = filepath.Join(os.TempDir(), "fastobuild")
	}
	return Config{
		Platform: platform.HostOS(),
		Arch:     platform.HostArch(),
		BuildDir: buildDir,
		GitOrg:   "fastogt",
		Android: Android{
			NDKRoot:  platform.DefaultNDKRoot,
			APILevel: platform.DefaultAndroidAPI,
		},
	}
}

type LoadOptions struct {
	// ConfigFile is used exclusively when set and must exist.
	ConfigFile string
	// ConfigDir overrides the user config directory.
	ConfigDir string
	// Flags, when set, override everything else for the flags the user
	// changed. Flag names use dashes: --build-dir binds build_dir.
	Flags *pflag.FlagSet
}

// Load resolves the configuration. It returns the config file used, if any.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("platform", d.Platform)
	v.SetDefault("arch", d.Arch)
	v.SetDefault("prefix", d.Prefix)
	v.SetDefault("build_dir", d.BuildDir)
	v.SetDefault("git_org", d.GitOrg)
	v.SetDefault("recipes", d.Recipes)
	v.SetDefault("keep_going", d.KeepGoing)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("android.ndk_root", d.Android.NDKRoot)
	v.SetDefault("android.api_level", d.Android.APILevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := configFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if !slices.Contains(knownKeys, key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return nil, "", bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("parse config: %w", err)
	}
	return &cfg, path, nil
}

var knownKeys = []string{
	"platform", "arch", "prefix", "build_dir", "git_org", "recipes", "keep_going", "verbose",
	"android.ndk_root", "android.api_level",
}

// flagKeys maps flags whose names do not follow the dash convention.
var flagKeys = map[string]string{
	"ndk-root":    "android.ndk_root",
	"android-api": "android.api_level",
}

func configFile(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.ConfigFile, nil
	}
	dir := opts.ConfigDir
	if dir == "" {
		d, err := env.ConfigDir()
		if err != nil {
			// no usable config dir: defaults and environment still apply
			return "", nil
		}
		dir = d
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}
