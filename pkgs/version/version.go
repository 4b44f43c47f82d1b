// Package version validates and orders upstream release versions of the
// dependencies fastobuild downloads as tarballs.
package version

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

var ErrInvalid = errors.New("invalid version")

// Scheme selects how a project numbers its releases.
type Scheme int

const (
	// Semver is MAJOR.MINOR.PATCH with an optional pre-release, e.g. CMake
	// and Meson releases.
	Semver Scheme = iota
	// GNU is free-form dotted numbering with letter suffixes, e.g. OpenSSL
	// "1.1.1w".
	GNU
)

func (s Scheme) String() string {
	if s == GNU {
		return "gnu"
	}
	return "semver"
}

// Canonical returns v in the "vX.Y.Z" form golang.org/x/mod/semver expects.
func Canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Validate reports whether v is a well-formed version for scheme.
func Validate(scheme Scheme, v string) error {
	if v == "" {
		return fmt.Errorf("%w: empty", ErrInvalid)
	}
	switch scheme {
	case Semver:
		c := Canonical(v)
		if !semver.IsValid(c) {
			return fmt.Errorf("%w: %q is not semantic", ErrInvalid, v)
		}
		// semver accepts the "v1" and "v1.2" shorthands; release files
		// always carry all three components.
		core, _, _ := strings.Cut(c, "+")
		if semver.Canonical(c) != core {
			return fmt.Errorf("%w: %q needs MAJOR.MINOR.PATCH", ErrInvalid, v)
		}
	case GNU:
		if !isDigit(v[0]) {
			return fmt.Errorf("%w: %q must start with a digit", ErrInvalid, v)
		}
		if strings.ContainsAny(v, "/\\ \t") {
			return fmt.Errorf("%w: %q", ErrInvalid, v)
		}
	}
	return nil
}

// Compare returns -1, 0 or 1 as a is older than, equal to or newer than b.
func Compare(scheme Scheme, a, b string) int {
	if scheme == Semver {
		return semver.Compare(Canonical(a), Canonical(b))
	}
	return compareGNU(a, b)
}

// AtLeast reports whether v is min or newer. An empty min accepts anything.
func AtLeast(scheme Scheme, v, min string) bool {
	if min == "" {
		return true
	}
	return Compare(scheme, v, min) >= 0
}
