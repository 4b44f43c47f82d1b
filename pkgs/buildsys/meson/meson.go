package meson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fastogt/fastobuild/pkgs/buildsys"
)

// BuildDirName is the build directory created inside the source tree.
const BuildDirName = "build_meson"

// Meson wraps meson setup followed by the backend build and install.
type Meson struct {
	runner     buildsys.Runner
	sourceDir  string
	installDir string
	system     buildsys.BuildSystem
	flags      []string
}

func New(r buildsys.Runner, sourceDir, installDir string) *Meson {
	return &Meson{
		runner:     r,
		sourceDir:  sourceDir,
		installDir: installDir,
		system:     buildsys.MustGet(buildsys.Ninja),
	}
}

func (m *Meson) BuildSystem(b buildsys.BuildSystem) *Meson {
	m.system = b
	return m
}

func (m *Meson) Flags(flags ...string) *Meson {
	m.flags = append(m.flags, flags...)
	return m
}

func (m *Meson) BuildDir() string { return filepath.Join(m.sourceDir, BuildDirName) }

// SetupArgs returns the meson setup invocation, run from BuildDir.
func (m *Meson) SetupArgs() []string {
	args := []string{"meson", "setup", "--prefix", m.installDir, "--libdir", m.installDir + "/lib"}
	args = append(args, m.flags...)
	return append(args, "..")
}

// Setup recreates the build directory and runs meson setup in it.
func (m *Meson) Setup(ctx context.Context) error {
	if _, err := os.Stat(m.sourceDir); err != nil {
		return fmt.Errorf("meson: %w: %s", buildsys.ErrMissingSource, m.sourceDir)
	}
	dir := m.BuildDir()
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return err
	}
	return m.runner.Run(ctx, dir, m.SetupArgs()...)
}

func (m *Meson) Build(ctx context.Context) error {
	return m.runner.Run(ctx, m.BuildDir(), m.system.CmdLine()...)
}

func (m *Meson) Install(ctx context.Context) error {
	return m.runner.Run(ctx, m.BuildDir(), m.system.InstallCmdLine()...)
}

func (m *Meson) Run(ctx context.Context) error {
	for _, step := range []func(context.Context) error{m.Setup, m.Build, m.Install} {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
