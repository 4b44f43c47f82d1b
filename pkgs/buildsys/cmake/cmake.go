package cmake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fastogt/fastobuild/pkgs/buildsys"
)

// DefaultBuildType is used when BuildType is never called.
const DefaultBuildType = "RELEASE"

// CMake wraps the configure, build and install steps of a CMake project
// with chainable configuration.
type CMake struct {
	runner     buildsys.Runner
	sourceDir  string
	installDir string
	buildType  string
	system     buildsys.BuildSystem
	flags      []string
}

// New creates a CMake step for the project rooted at sourceDir that
// installs into installDir. Both paths should be absolute.
func New(r buildsys.Runner, sourceDir, installDir string) *CMake {
	return &CMake{
		runner:     r,
		sourceDir:  sourceDir,
		installDir: installDir,
		buildType:  DefaultBuildType,
		system:     buildsys.MustGet(buildsys.Ninja),
	}
}

func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

// BuildSystem selects the generator and the tool that drives the build.
func (c *CMake) BuildSystem(b buildsys.BuildSystem) *CMake {
	c.system = b
	return c
}

// Flags appends raw cmake arguments, e.g. "-DBUILD_SHARED_LIBS=OFF".
func (c *CMake) Flags(flags ...string) *CMake {
	c.flags = append(c.flags, flags...)
	return c
}

func (c *CMake) Define(key, value string) *CMake {
	return c.Flags("-D" + key + "=" + value)
}

func (c *CMake) DefineBool(key string, value bool) *CMake {
	if value {
		return c.Define(key, "ON")
	}
	return c.Define(key, "OFF")
}

// BuildDir is the out-of-tree build directory, one per build type.
func (c *CMake) BuildDir() string {
	return filepath.Join(c.sourceDir, "build_cmake_"+strings.ToLower(c.buildType))
}

// ConfigureArgs returns the full cmake invocation.
func (c *CMake) ConfigureArgs() []string {
	args := []string{
		"cmake", c.sourceDir,
		"-G", c.system.CMakeGenerator(),
		"-DCMAKE_BUILD_TYPE=" + c.buildType,
	}
	args = append(args, c.flags...)
	return append(args, "-DCMAKE_INSTALL_PREFIX="+c.installDir)
}

// Configure recreates the build directory and runs cmake in it.
func (c *CMake) Configure(ctx context.Context) error {
	if _, err := os.Stat(c.sourceDir); err != nil {
		return fmt.Errorf("cmake: %w: %s", buildsys.ErrMissingSource, c.sourceDir)
	}
	buildDir := c.BuildDir()
	if err := os.RemoveAll(buildDir); err != nil {
		return err
	}
	if err := os.Mkdir(buildDir, 0o755); err != nil {
		return err
	}
	return c.runner.Run(ctx, buildDir, c.ConfigureArgs()...)
}

func (c *CMake) Build(ctx context.Context) error {
	return c.runner.Run(ctx, c.BuildDir(), c.system.CmdLine()...)
}

func (c *CMake) Install(ctx context.Context) error {
	return c.runner.Run(ctx, c.BuildDir(), c.system.InstallCmdLine()...)
}

// Run configures, builds and installs, stopping at the first failure.
func (c *CMake) Run(ctx context.Context) error {
	for _, step := range []func(context.Context) error{c.Configure, c.Build, c.Install} {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Args returns a copy of the extra flags collected so far.
func (c *CMake) Args() []string {
	return slices.Clone(c.flags)
}
