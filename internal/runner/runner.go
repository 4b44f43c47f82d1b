// Package runner executes build tools as child processes with an explicit
// environment and working directory, and interprets POSIX shell scripts
// in-process.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/qiniu/x/gsh"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Executor starts a prepared command and waits for it. gsh.Sys is the
// default; tests substitute their own.
type Executor interface {
	Run(cmd *exec.Cmd) error
}

// CommandError reports a command that could not be started or exited with
// a non-zero status.
type CommandError struct {
	Argv     []string
	Dir      string
	ExitCode int    // -1 when the command never ran to completion
	Output   string // tail of combined stdout and stderr
	Err      error
}

func (e *CommandError) Error() string {
	cmd := strings.Join(e.Argv, " ")
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s (in %s): exit status %d", cmd, e.Dir, e.ExitCode)
	}
	return fmt.Sprintf("%s (in %s): %v", cmd, e.Dir, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner implements buildsys.Runner.
type Runner struct {
	exec    Executor
	environ []string
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
	tail    int
}

type Option func(*Runner)

func WithExecutor(e Executor) Option {
	return func(r *Runner) { r.exec = e }
}

// WithOutput redirects the output of children. nil writers discard.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = orDiscard(stdout)
		r.stderr = orDiscard(stderr)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithTail sets how many trailing bytes of output a CommandError keeps.
func WithTail(n int) Option {
	return func(r *Runner) { r.tail = n }
}

const defaultTail = 4 << 10

// New returns a Runner whose children see exactly environ.
func New(environ []string, opts ...Option) *Runner {
	r := &Runner{
		exec:    gsh.Sys,
		environ: environ,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  log.Default(),
		tail:    defaultTail,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes argv in dir.
func (r *Runner) Run(ctx context.Context, dir string, argv ...string) error {
	if len(argv) == 0 {
		return errors.New("runner: empty command")
	}
	r.logger.Info("run", "cmd", strings.Join(argv, " "), "dir", dir)

	// Bare names resolve against the children's PATH, which includes
	// tools installed earlier in the session.
	name := argv[0]
	if filepath.Base(name) == name {
		if p, ok := r.LookPath(name); ok {
			name = p
		}
	}

	out := newTailBuffer(r.tail)
	cmd := exec.CommandContext(ctx, name, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Dir = dir
	cmd.Env = r.environ
	cmd.Stdout = io.MultiWriter(r.stdout, out)
	cmd.Stderr = io.MultiWriter(r.stderr, out)

	err := r.exec.Run(cmd)
	if err == nil {
		return nil
	}
	cerr := &CommandError{Argv: argv, Dir: dir, ExitCode: -1, Output: out.String(), Err: err}
	if ctxErr := ctx.Err(); ctxErr != nil {
		cerr.Err = ctxErr
		return cerr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
	}
	return cerr
}

// RunScript interprets the shell script at dir/script with args as
// positional parameters. Commands the script runs see the same environment
// as Run children.
func (r *Runner) RunScript(ctx context.Context, dir, script string, args ...string) error {
	path := script
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, script)
	}
	argv := append([]string{"sh", script}, args...)
	r.logger.Info("run", "cmd", strings.Join(argv, " "), "dir", dir)

	f, err := os.Open(path)
	if err != nil {
		return &CommandError{Argv: argv, Dir: dir, ExitCode: -1, Err: err}
	}
	defer f.Close()
	prog, err := syntax.NewParser().Parse(f, script)
	if err != nil {
		return &CommandError{Argv: argv, Dir: dir, ExitCode: -1, Err: err}
	}

	out := newTailBuffer(r.tail)
	opts := []interp.RunnerOption{
		interp.StdIO(nil, io.MultiWriter(r.stdout, out), io.MultiWriter(r.stderr, out)),
		interp.Env(expand.ListEnviron(r.environ...)),
		interp.Dir(dir),
	}
	if len(args) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, args...)...))
	}
	sh, err := interp.New(opts...)
	if err != nil {
		return &CommandError{Argv: argv, Dir: dir, ExitCode: -1, Err: err}
	}
	if err := sh.Run(ctx, prog); err != nil {
		cerr := &CommandError{Argv: argv, Dir: dir, ExitCode: -1, Output: out.String(), Err: err}
		var status interp.ExitStatus
		if errors.As(err, &status) {
			cerr.ExitCode = int(status)
		}
		return cerr
	}
	return nil
}

// LookPath searches the PATH children see, not the PATH of this process.
func (r *Runner) LookPath(file string) (string, bool) {
	var pathEnv string
	for _, kv := range r.environ {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.EqualFold(k, "PATH") {
			pathEnv = v
		}
	}
	names := []string{file}
	if runtime.GOOS == "windows" && filepath.Ext(file) == "" {
		names = append(names, file+".exe", file+".bat", file+".cmd")
	}
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		for _, name := range names {
			p := filepath.Join(dir, name)
			if isExecutable(p) {
				return p, true
			}
		}
	}
	return "", false
}

// Environ returns the environment children run with.
func (r *Runner) Environ() []string {
	return r.environ
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return fi.Mode()&0o111 != 0
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
