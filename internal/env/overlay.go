package env

import (
	"maps"
	"os"
	"slices"
	"strings"
)

// ListSeparator joins entries of PATH-like variables on the host.
const ListSeparator = string(os.PathListSeparator)

// Env is an environment handed to child processes. It never touches the
// environment of the current process.
type Env struct {
	vars map[string]string
}

// New builds an Env from KEY=VALUE pairs. Later pairs win; malformed
// entries are skipped.
func New(base []string) *Env {
	e := &Env{vars: make(map[string]string, len(base))}
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			e.vars[k] = v
		}
	}
	return e
}

// FromOS snapshots the process environment.
func FromOS() *Env {
	return New(os.Environ())
}

func (e *Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

func (e *Env) Get(key string) string {
	return e.vars[key]
}

func (e *Env) Set(key, value string) {
	e.vars[key] = value
}

func (e *Env) Unset(key string) {
	delete(e.vars, key)
}

// Append adds value to the end of the list variable key, keeping what is
// already there.
func (e *Env) Append(key, value string) {
	if cur := e.vars[key]; cur != "" {
		value = cur + ListSeparator + value
	}
	e.vars[key] = value
}

// Prepend adds value to the front of the list variable key.
func (e *Env) Prepend(key, value string) {
	if cur := e.vars[key]; cur != "" {
		value = value + ListSeparator + cur
	}
	e.vars[key] = value
}

// Merge sets every pair of m.
func (e *Env) Merge(m map[string]string) {
	maps.Copy(e.vars, m)
}

// Environ returns the environment as sorted KEY=VALUE pairs, ready for
// exec.Cmd.Env.
func (e *Env) Environ() []string {
	keys := slices.Sorted(maps.Keys(e.vars))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}

func (e *Env) Clone() *Env {
	return &Env{vars: maps.Clone(e.vars)}
}
