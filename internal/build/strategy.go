package build

import (
	"context"
	"fmt"
	"os"

	"github.com/fastogt/fastobuild/pkgs/buildsys/autotools"
	"github.com/fastogt/fastobuild/pkgs/buildsys/cmake"
	"github.com/fastogt/fastobuild/pkgs/buildsys/meson"
	"github.com/fastogt/fastobuild/pkgs/platform"
	"github.com/fastogt/fastobuild/pkgs/version"
)

func (s *Session) checkVersion(r Recipe, o Options) error {
	if !r.Versioned() {
		if o.Version != "" {
			return fmt.Errorf("%w: %s takes no version, drop @%s", ErrUnversioned, r.Name, o.Version)
		}
		return nil
	}
	if o.Version == "" {
		return fmt.Errorf("%w: %s needs NAME@VERSION", ErrVersionRequired, r.Name)
	}
	if err := version.Validate(r.VersionScheme, o.Version); err != nil {
		return err
	}
	if !version.AtLeast(r.VersionScheme, o.Version, r.MinVersion) {
		return fmt.Errorf("%w: %s %s is older than %s", version.ErrInvalid, r.Name, o.Version, r.MinVersion)
	}
	return nil
}

// retrieve puts the recipe's sources under the build directory and returns
// the source root.
func (s *Session) retrieve(ctx context.Context, r Recipe, o Options) (string, error) {
	url := r.SourceURL(s.gitOrg, o.Version)
	if r.Source == Git {
		branch := o.Branch
		if branch == "" {
			branch = r.Branch
		}
		return s.fetcher.Clone(ctx, url, branch, s.buildDir, true)
	}
	file, err := s.fetcher.Download(ctx, url, s.buildDir)
	if err != nil {
		return "", err
	}
	return s.fetcher.Extract(ctx, file, s.buildDir)
}

func (s *Session) runStrategy(ctx context.Context, r Recipe, src string, o Options) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingSource, src)
	}
	bs, err := r.buildSystem()
	if err != nil {
		return err
	}
	flags := r.flags(s.platform, o)

	switch r.Strategy {
	case CMake:
		if r.UsePlatformFlags {
			flags = append(flags, s.platform.CMakeSpecificFlags()...)
		}
		if err := cmake.New(s.runner, src, s.prefix).BuildSystem(bs).Flags(flags...).Run(ctx); err != nil {
			return err
		}
		s.ldconfig(ctx, src)
		return nil
	case Meson:
		return meson.New(s.runner, src, s.prefix).BuildSystem(bs).Flags(flags...).Run(ctx)
	case Python:
		return s.runner.Run(ctx, src, "python3", "setup.py", "install")
	}

	if r.UsePlatformFlags {
		flags = append(flags, s.platform.ConfigureSpecificFlags()...)
	}
	at := autotools.New(s.runner, src, s.prefix).BuildSystem(bs).Flags(flags...)
	if r.Executable != "" {
		at.Executable(r.Executable)
	}
	switch r.Strategy {
	case Autogen:
		err = at.Autogen(ctx)
	case Bootstrap:
		err = at.Bootstrap(ctx)
	case Autoreconf:
		err = at.Autoreconf(ctx, libtoolize(s.platform))
	case Configure:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, r.Strategy)
	}
	if err != nil {
		return err
	}
	if err := at.Run(ctx); err != nil {
		return err
	}
	s.ldconfig(ctx, src)
	return nil
}

// libtoolize is Homebrew's glibtoolize on macOS.
func libtoolize(p platform.Platform) string {
	if p.Name() == platform.MacOSX {
		return "glibtoolize"
	}
	return "libtoolize"
}

// ldconfig refreshes the linker cache when the tool exists. It needs root,
// so failure only warns.
func (s *Session) ldconfig(ctx context.Context, dir string) {
	path, ok := s.runner.LookPath("ldconfig")
	if !ok {
		return
	}
	if err := s.runner.Run(ctx, dir, path); err != nil {
		s.logger.Warn("ldconfig failed", "err", err)
	}
}
