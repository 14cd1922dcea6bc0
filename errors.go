package colorpipe

import (
	"errors"
	"fmt"
)

var (
	// ErrBuild reports a pipeline that could not be constructed from the
	// given transforms. Validation and unsupported-operation failures of
	// individual operations are wrapped in it.
	ErrBuild = errors.New("colorpipe: build failed")

	// ErrRender reports an internal invariant broken while turning a built
	// pipeline into a processor or shader program.
	ErrRender = errors.New("colorpipe: render failed")
)

// BuildError describes a failed Build. Index is the position of the
// offending operation in the flattened transform list, or -1 when the
// failure does not belong to one operation. Group is the "name" or "id"
// attribute of the innermost group metadata around the operation.
type BuildError struct {
	Index int
	Op    string
	Group string
	Err   error
}

func (e *BuildError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("colorpipe: build: %v", e.Err)
	case e.Group != "":
		return fmt.Sprintf("colorpipe: build: op %d (%s) in group %q: %v", e.Index, e.Op, e.Group, e.Err)
	default:
		return fmt.Sprintf("colorpipe: build: op %d (%s): %v", e.Index, e.Op, e.Err)
	}
}

// Is matches ErrBuild.
func (e *BuildError) Is(target error) bool { return target == ErrBuild }

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error { return e.Err }

// RenderError describes a failure to create a processor or program. Target
// is "cpu" or the shader language.
type RenderError struct {
	Target string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("colorpipe: %s render: %v", e.Target, e.Err)
}

// Is matches ErrRender.
func (e *RenderError) Is(target error) bool { return target == ErrRender }

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error { return e.Err }

func buildErr(index int, op string, err error) error {
	return &BuildError{Index: index, Op: op, Err: err}
}
