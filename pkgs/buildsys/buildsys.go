// Package buildsys describes the native build tools a configured source tree
// can be driven with, and the contract build steps use to run them.
package buildsys

import (
	"context"
	"errors"
	"slices"
)

// ErrMissingSource is returned when a step is pointed at a source tree that
// does not exist.
var ErrMissingSource = errors.New("source directory does not exist")

// Names of the registered build systems.
const (
	Ninja      = "ninja"
	SingleMake = "single_make"
	Make       = "make"
	GMake      = "gmake"
)

// BuildSystem is a native build tool: the command line that builds a
// configured tree and the CMake generator that produces input for it.
type BuildSystem struct {
	name      string
	cmdLine   []string
	generator string
}

func (b BuildSystem) Name() string { return b.name }

// CMakeGenerator returns the value passed to cmake -G.
func (b BuildSystem) CMakeGenerator() string { return b.generator }

// CmdLine returns a fresh copy of the build command line.
func (b BuildSystem) CmdLine() []string { return slices.Clone(b.cmdLine) }

// InstallCmdLine returns the build command line followed by "install".
func (b BuildSystem) InstallCmdLine() []string { return append(b.CmdLine(), "install") }

var registry = []BuildSystem{
	{name: Ninja, cmdLine: []string{"ninja"}, generator: "Ninja"},
	{name: SingleMake, cmdLine: []string{"make"}, generator: "Unix Makefiles"},
	{name: Make, cmdLine: []string{"make", "-j2"}, generator: "Unix Makefiles"},
	{name: GMake, cmdLine: []string{"gmake", "-j2"}, generator: "Unix Makefiles"},
}

// Get looks up a build system by name.
func Get(name string) (BuildSystem, bool) {
	for _, b := range registry {
		if b.name == name {
			return b, true
		}
	}
	return BuildSystem{}, false
}

// MustGet is like Get but panics on unknown names. It is meant for the
// package-level constants above.
func MustGet(name string) BuildSystem {
	b, ok := Get(name)
	if !ok {
		panic("buildsys: unknown build system " + name)
	}
	return b
}

// Names lists the registered build systems in registration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, b := range registry {
		names[i] = b.name
	}
	return names
}

// Runner executes build tools. Every call names its working directory
// explicitly; implementations must not depend on the process cwd.
type Runner interface {
	// Run executes argv[0] with the remaining arguments in dir.
	Run(ctx context.Context, dir string, argv ...string) error
	// RunScript interprets the POSIX shell script at path script (relative
	// to dir) with args as positional parameters.
	RunScript(ctx context.Context, dir, script string, args ...string) error
}
