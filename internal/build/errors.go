package build

import (
	"errors"

	"github.com/fastogt/fastobuild/pkgs/buildsys"
)

var (
	ErrUnknownRecipe      = errors.New("unknown recipe")
	ErrVersionRequired    = errors.New("version required")
	ErrUnversioned        = errors.New("recipe is not versioned")
	ErrUnknownBuildSystem = errors.New("unknown build system")
	ErrUnknownStrategy    = errors.New("unknown build strategy")

	// ErrMissingSource is returned when a recipe's source tree is absent
	// after retrieval.
	ErrMissingSource = buildsys.ErrMissingSource
)

// BuildError is the error every Session operation fails with. Err keeps the
// underlying cause reachable through errors.Is and errors.As.
type BuildError struct {
	Op  string
	Err error
}

func (e *BuildError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *BuildError) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BuildError
	if errors.As(err, &be) && be.Op == op {
		return err
	}
	return &BuildError{Op: op, Err: err}
}
