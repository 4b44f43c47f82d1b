// Package buildsystest provides a buildsys.Runner that records invocations
// instead of executing them.
package buildsystest

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Call is one recorded invocation.
type Call struct {
	Dir    string
	Argv   []string
	Script bool
}

// String renders the call as "argv... @dir" for readable test failures.
func (c Call) String() string {
	s := strings.Join(c.Argv, " ")
	if c.Script {
		s = "script " + s
	}
	return s + " @" + c.Dir
}

// Recorder implements buildsys.Runner.
type Recorder struct {
	// FailOn makes any call whose argv[0] (or script path) equals the key
	// return the mapped error.
	FailOn map[string]error

	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Run(ctx context.Context, dir string, argv ...string) error {
	return r.record(ctx, Call{Dir: dir, Argv: slices.Clone(argv)})
}

func (r *Recorder) RunScript(ctx context.Context, dir, script string, args ...string) error {
	return r.record(ctx, Call{Dir: dir, Argv: append([]string{script}, args...), Script: true})
}

func (r *Recorder) record(ctx context.Context, c Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if len(c.Argv) > 0 {
		if err, ok := r.FailOn[c.Argv[0]]; ok {
			return err
		}
	}
	return nil
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Argvs returns the argv of every recorded call.
func (r *Recorder) Argvs() [][]string {
	calls := r.Calls()
	out := make([][]string, len(calls))
	for i, c := range calls {
		out[i] = c.Argv
	}
	return out
}

// EqualArgvs reports whether two lists of command lines are identical.
func EqualArgvs(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}
