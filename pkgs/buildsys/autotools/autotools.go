package autotools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fastogt/fastobuild/pkgs/buildsys"
)

// DefaultExecutable is the configure script looked up in the source tree.
const DefaultExecutable = "./configure"

// AutoTools wraps the configure, make and make install steps of an
// in-tree Autotools style build with chainable configuration.
type AutoTools struct {
	runner     buildsys.Runner
	sourceDir  string
	installDir string
	executable string
	system     buildsys.BuildSystem
	flags      []string
}

// New creates an AutoTools step that builds in sourceDir and installs into
// installDir.
func New(r buildsys.Runner, sourceDir, installDir string) *AutoTools {
	return &AutoTools{
		runner:     r,
		sourceDir:  sourceDir,
		installDir: installDir,
		executable: DefaultExecutable,
		system:     buildsys.MustGet(buildsys.Make),
	}
}

// Executable overrides the configure script, e.g. "./config" for OpenSSL.
func (a *AutoTools) Executable(path string) *AutoTools {
	a.executable = path
	return a
}

func (a *AutoTools) BuildSystem(b buildsys.BuildSystem) *AutoTools {
	a.system = b
	return a
}

func (a *AutoTools) Flags(flags ...string) *AutoTools {
	a.flags = append(a.flags, flags...)
	return a
}

// ConfigureArgs returns the full configure invocation.
func (a *AutoTools) ConfigureArgs() []string {
	args := []string{a.executable, "--prefix=" + a.installDir}
	return append(args, a.flags...)
}

// Autogen runs the autogen.sh script shipped in the source tree.
func (a *AutoTools) Autogen(ctx context.Context) error {
	return a.runner.RunScript(ctx, a.sourceDir, "autogen.sh")
}

// Bootstrap runs the bootstrap script shipped in the source tree.
func (a *AutoTools) Bootstrap(ctx context.Context) error {
	return a.runner.RunScript(ctx, a.sourceDir, "bootstrap")
}

// Autoreconf regenerates the build system with the given libtoolize
// binary followed by autoreconf --install.
func (a *AutoTools) Autoreconf(ctx context.Context, libtoolize string) error {
	if err := a.runner.Run(ctx, a.sourceDir, libtoolize); err != nil {
		return err
	}
	return a.runner.Run(ctx, a.sourceDir, "autoreconf", "--install")
}

// Configure marks the configure script executable and runs it.
func (a *AutoTools) Configure(ctx context.Context) error {
	exe := filepath.Join(a.sourceDir, a.executable)
	fi, err := os.Stat(exe)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("autotools: %w: %s", buildsys.ErrMissingSource, exe)
		}
		return err
	}
	if err := os.Chmod(exe, fi.Mode()|0o111); err != nil {
		return err
	}
	return a.runner.Run(ctx, a.sourceDir, a.ConfigureArgs()...)
}

func (a *AutoTools) Build(ctx context.Context) error {
	return a.runner.Run(ctx, a.sourceDir, a.system.CmdLine()...)
}

func (a *AutoTools) Install(ctx context.Context) error {
	return a.runner.Run(ctx, a.sourceDir, a.system.InstallCmdLine()...)
}

// Run configures, builds and installs, stopping at the first failure.
func (a *AutoTools) Run(ctx context.Context) error {
	for _, step := range []func(context.Context) error{a.Configure, a.Build, a.Install} {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
