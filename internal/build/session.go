// Package build orchestrates fetching, configuring, building and installing
// third-party dependencies for one target platform into an install prefix.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/fastogt/fastobuild/internal/env"
	"github.com/fastogt/fastobuild/internal/fetch"
	"github.com/fastogt/fastobuild/internal/runner"
	"github.com/fastogt/fastobuild/pkgs/buildsys"
	"github.com/fastogt/fastobuild/pkgs/platform"
)

// Request names what a Session builds for and where.
type Request struct {
	Platform string
	Arch     string
	// BuildDir is removed and recreated. Relative paths are resolved
	// against the current directory.
	BuildDir string
	// Prefix is where artifacts are installed. Empty selects the
	// architecture default. A leading "~" is expanded.
	Prefix string
}

// Runner runs build tools for a Session.
type Runner interface {
	buildsys.Runner
	// LookPath reports whether file is on the PATH children see.
	LookPath(file string) (string, bool)
}

// Session is a resolved build request: one platform, one build directory,
// one install prefix and the environment every child process gets.
type Session struct {
	platform platform.Platform
	buildDir string
	prefix   string
	env      *env.Env
	runner   Runner
	fetcher  fetch.Fetcher
	recipes  *Table
	gitOrg   string
	logger   *log.Logger
	manifest *manifest
}

type options struct {
	base         []string
	newRunner    func(environ []string) Runner
	fetcher      fetch.Fetcher
	recipes      *Table
	gitOrg       string
	logger       *log.Logger
	platformOpts []platform.Option
}

type Option func(*options)

// WithBaseEnv replaces the process environment the overlay starts from.
func WithBaseEnv(environ []string) Option {
	return func(o *options) { o.base = environ }
}

// WithRunner sets the factory for the runner. It receives the final
// environment.
func WithRunner(f func(environ []string) Runner) Option {
	return func(o *options) { o.newRunner = f }
}

func WithFetcher(f fetch.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithRecipes replaces the built-in recipe table.
func WithRecipes(t *Table) Option {
	return func(o *options) { o.recipes = t }
}

// WithGitOrg sets the GitHub organization short recipe URLs refer to.
func WithGitOrg(org string) Option {
	return func(o *options) { o.gitOrg = org }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPlatformOptions passes options (distribution probe, Android NDK) to
// the platform catalog.
func WithPlatformOptions(opts ...platform.Option) Option {
	return func(o *options) { o.platformOpts = append(o.platformOpts, opts...) }
}

// New resolves req and prepares the build directory. Nothing on disk is
// touched unless platform, architecture and prefix all resolve.
func New(req Request, opts ...Option) (*Session, error) {
	o := &options{gitOrg: DefaultGitOrg, logger: log.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.base == nil {
		o.base = os.Environ()
	}
	if o.recipes == nil {
		o.recipes = Builtin()
	}
	if o.fetcher == nil {
		o.fetcher = fetch.New(fetch.WithLogger(o.logger))
	}
	if o.newRunner == nil {
		logger := o.logger
		o.newRunner = func(environ []string) Runner {
			return runner.New(environ, runner.WithLogger(logger))
		}
	}

	const op = "new build request"
	sp, ok := platform.GetSupportedPlatformByName(req.Platform, o.platformOpts...)
	if !ok {
		return nil, &BuildError{Op: op, Err: fmt.Errorf("%w: %q", platform.ErrUnknownPlatform, req.Platform)}
	}
	arch, ok := sp.GetArchitectureByArchName(req.Arch)
	if !ok {
		return nil, &BuildError{Op: op, Err: fmt.Errorf("%w: %q for %s", platform.ErrUnknownArch, req.Arch, sp.Name())}
	}

	prefix := req.Prefix
	if prefix == "" {
		prefix = arch.DefaultInstallPrefix()
	}
	prefix, err := filepath.Abs(platform.ExpandUser(prefix))
	if err != nil {
		return nil, &BuildError{Op: op, Err: err}
	}
	if req.BuildDir == "" {
		return nil, &BuildError{Op: op, Err: errors.New("empty build directory")}
	}
	buildDir, err := filepath.Abs(platform.ExpandUser(req.BuildDir))
	if err != nil {
		return nil, &BuildError{Op: op, Err: err}
	}
	if buildDir == filepath.Dir(buildDir) {
		return nil, &BuildError{Op: op, Err: fmt.Errorf("refusing to use %s as build directory", buildDir)}
	}

	p, err := sp.MakePlatformByArch(arch, sp.PackageTypes(), o.platformOpts...)
	if err != nil {
		return nil, &BuildError{Op: op, Err: err}
	}

	e := env.New(o.base)
	e.Append("PKG_CONFIG_PATH", prefix+"/lib/pkgconfig/")
	e.Append("LD_LIBRARY_PATH", prefix+"/lib")
	e.Append("PATH", prefix+"/bin")
	e.Merge(p.EnvVariables())

	if err := os.RemoveAll(buildDir); err != nil {
		return nil, &BuildError{Op: op, Err: err}
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, &BuildError{Op: op, Err: err}
	}

	s := &Session{
		platform: p,
		buildDir: buildDir,
		prefix:   prefix,
		env:      e,
		runner:   o.newRunner(e.Environ()),
		fetcher:  o.fetcher,
		recipes:  o.recipes,
		gitOrg:   o.gitOrg,
		logger:   o.logger,
		manifest: newManifest(buildDir),
	}
	s.logger.Infof("build request for platform: %s(%s) created", p.Name(), arch.Name())
	return s, nil
}

func (s *Session) Platform() platform.Platform { return s.platform }

func (s *Session) PlatformName() string { return s.platform.Name() }

// BuildDir is the absolute directory sources are retrieved into.
func (s *Session) BuildDir() string { return s.buildDir }

// Prefix is the absolute install prefix.
func (s *Session) Prefix() string { return s.prefix }

// Environ returns the environment child processes run with.
func (s *Session) Environ() []string { return s.env.Environ() }

// Getenv looks a variable up in the child environment.
func (s *Session) Getenv(key string) string { return s.env.Get(key) }

// Recipes returns the table the session builds from.
func (s *Session) Recipes() *Table { return s.recipes }

// Built lists what this session installed successfully, in order.
func (s *Session) Built() []Record { return s.manifest.records() }

// Build retrieves and builds the recipe called name.
func (s *Session) Build(ctx context.Context, name string, o Options) error {
	op := "build " + name
	r, ok := s.recipes.Lookup(name)
	if !ok {
		return &BuildError{Op: op, Err: fmt.Errorf("%w: %s", ErrUnknownRecipe, name)}
	}
	if err := s.checkVersion(r, o); err != nil {
		return &BuildError{Op: op, Err: err}
	}
	src, err := s.retrieve(ctx, r, o)
	if err != nil {
		return &BuildError{Op: op, Err: err}
	}
	if err := s.runStrategy(ctx, r, src, o); err != nil {
		return &BuildError{Op: op, Err: err}
	}
	if err := s.manifest.add(Record{Name: name, Version: o.Version, SourceDir: src}); err != nil {
		s.logger.Warn("could not update build manifest", "err", err)
	}
	s.logger.Info("installed", "name", name, "prefix", s.prefix)
	return nil
}

// BuildAll builds targets in order. It stops at the first failure unless
// keepGoing is set, in which case every failure is returned joined.
func (s *Session) BuildAll(ctx context.Context, targets []Target, keepGoing bool) error {
	var errs []error
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := s.Build(ctx, t.Name, t.Options); err != nil {
			if !keepGoing {
				return err
			}
			s.logger.Error("build failed", "target", t.String(), "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InstallPackage installs name with the platform's package manager.
func (s *Session) InstallPackage(ctx context.Context, name string) error {
	argv, err := s.platform.InstallCommand(name)
	if err != nil {
		return &BuildError{Op: "install package " + name, Err: err}
	}
	return wrap("install package "+name, s.runner.Run(ctx, s.buildDir, argv...))
}

// InstallPythonPackage installs name with pip3.
func (s *Session) InstallPythonPackage(ctx context.Context, name string) error {
	return wrap("install python package "+name, s.runner.Run(ctx, s.buildDir, "pip3", "install", name))
}
